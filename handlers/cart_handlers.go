package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"yeniliko/api/models"
	"yeniliko/api/store"
	"yeniliko/api/tracker"
)

// CartHandlers mutates the Redis cart snapshot and records the matching
// cart_add/cart_remove activities. The snapshot is the side-channel that
// session summaries read cart value from.
type CartHandlers struct {
	Carts    *store.CartStore
	Trackers *tracker.Manager
}

func NewCartHandlers(carts *store.CartStore, trackers *tracker.Manager) *CartHandlers {
	return &CartHandlers{Carts: carts, Trackers: trackers}
}

func (h *CartHandlers) GetCart(c *gin.Context) {
	userID := c.GetString("user_id")

	items, err := h.Carts.GetCart(c.Request.Context(), userID)
	if err != nil {
		log.Printf("ERROR: Failed to read cart for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read cart"})
		return
	}
	if items == nil {
		items = []models.CartItem{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *CartHandlers) AddItem(c *gin.Context) {
	var req models.CartAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	item := models.CartItem{
		ProductID: req.ProductID,
		Name:      req.Name,
		Price:     req.Price,
		Quantity:  req.Quantity,
	}

	items, err := h.Carts.AddItem(c.Request.Context(), userID, item)
	if err != nil {
		log.Printf("ERROR: Failed to add cart item for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	h.trackCartChange(c, models.ActivityCartAdd, req.ProductID, item)

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *CartHandlers) RemoveItem(c *gin.Context) {
	var req models.CartRemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	items, err := h.Carts.RemoveItem(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		log.Printf("ERROR: Failed to remove cart item for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	h.trackCartChange(c, models.ActivityCartRemove, req.ProductID, models.CartItem{})

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// trackCartChange records the cart activity if a live session exists.
// Cart persistence already succeeded; tracking is telemetry on top.
func (h *CartHandlers) trackCartChange(c *gin.Context, activityType models.ActivityType, productID string, item models.CartItem) {
	s, ok := h.Trackers.Session(c.GetString("session_token"))
	if !ok {
		return
	}

	var details json.RawMessage
	if activityType == models.ActivityCartAdd {
		details, _ = json.Marshal(gin.H{"name": item.Name, "price": item.Price, "quantity": item.Quantity})
	}

	s.Track(c.Request.Context(), activityType, tracker.TrackOpts{
		ProductID: productID,
		Details:   details,
	})
}
