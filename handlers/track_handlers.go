package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"yeniliko/api/models"
	"yeniliko/api/tracker"
)

// TrackHandlers receives the storefront's tracking beacons: explicit
// activity events, navigation changes, and tab lifecycle signals. All of
// them are telemetry, so a missing session or a failed write never
// produces a client-visible error.
type TrackHandlers struct {
	Trackers *tracker.Manager
}

func NewTrackHandlers(trackers *tracker.Manager) *TrackHandlers {
	return &TrackHandlers{Trackers: trackers}
}

type trackEventRequest struct {
	ActivityType models.ActivityType `json:"activityType" binding:"required"`
	PageURL      string              `json:"pageUrl"`
	ProductID    string              `json:"productId"`
	Details      json.RawMessage     `json:"details"`
}

type navigationRequest struct {
	Path string `json:"path" binding:"required"`
}

type visibilityRequest struct {
	Visible *bool `json:"visible" binding:"required"`
}

// session resolves the caller's tracker session from the auth token.
// A missing session (server restarted, token reused) is logged and
// dropped; the beacon still succeeds.
func (h *TrackHandlers) session(c *gin.Context) (*tracker.Session, bool) {
	token := c.GetString("session_token")
	s, ok := h.Trackers.Session(token)
	if !ok {
		log.Printf("Tracking beacon without live session (user=%s)", c.GetString("user_id"))
		c.Status(http.StatusNoContent)
	}
	return s, ok
}

// TrackEvent records one explicit activity event.
func (h *TrackHandlers) TrackEvent(c *gin.Context) {
	var req trackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !req.ActivityType.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown activity type"})
		return
	}

	s, ok := h.session(c)
	if !ok {
		return
	}

	s.Track(c.Request.Context(), req.ActivityType, tracker.TrackOpts{
		PageURL:   req.PageURL,
		ProductID: req.ProductID,
		Details:   req.Details,
	})
	c.Status(http.StatusNoContent)
}

// TrackNavigation feeds a route change into the session's navigation
// observer. Pushes, replaces, and back/forward all report here; the
// session de-duplicates against the previous path.
func (h *TrackHandlers) TrackNavigation(c *gin.Context) {
	var req navigationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	s, ok := h.session(c)
	if !ok {
		return
	}

	s.Navigate(c.Request.Context(), req.Path)
	c.Status(http.StatusNoContent)
}

// TrackVisibility flips presence when the client tab is hidden or shown.
func (h *TrackHandlers) TrackVisibility(c *gin.Context) {
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	s, ok := h.session(c)
	if !ok {
		return
	}

	s.SetVisible(c.Request.Context(), *req.Visible)
	c.Status(http.StatusNoContent)
}

// TrackUnload marks the user offline as the page closes. Best-effort:
// the browser may cut the request off mid-flight.
func (h *TrackHandlers) TrackUnload(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	s.Unload(c.Request.Context())
	c.Status(http.StatusNoContent)
}
