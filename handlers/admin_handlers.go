package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"yeniliko/api/dashboard"
	"yeniliko/api/models"
	"yeniliko/api/store"
	"yeniliko/api/tracker"
)

// AdminHandlers serves the admin dashboard widgets. The online-users
// widget reads from a shared poller; per-user detail views hit the
// tracker service directly on each poll from the client.
type AdminHandlers struct {
	Service      *tracker.Service
	Users        *store.UserStore
	OnlinePoller *dashboard.Poller
}

func NewAdminHandlers(service *tracker.Service, users *store.UserStore, onlinePoller *dashboard.Poller) *AdminHandlers {
	return &AdminHandlers{Service: service, Users: users, OnlinePoller: onlinePoller}
}

// GetOnlineUsers renders the "who is online" widget from the poller's
// latest snapshot. An empty list may mean no one is online or the store
// was unreachable at fetch time; the widget renders both the same way.
func (h *AdminHandlers) GetOnlineUsers(c *gin.Context) {
	snapshot, fetchedAt := h.OnlinePoller.Latest()

	users, _ := snapshot.([]models.OnlineUser)
	if users == nil {
		users = []models.OnlineUser{}
	}

	c.JSON(http.StatusOK, gin.H{
		"onlineUsers": users,
		"fetchedAt":   fetchedAt.Format(time.RFC3339),
	})
}

// GetUserSession renders the per-user session summary widget: the
// user's profile plus the reconstructed session, if any. The detail
// view refreshes faster than the overview, so the response carries its
// own poll interval.
func (h *AdminHandlers) GetUserSession(c *gin.Context) {
	userID := c.Param("id")

	user, err := h.Users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// A nil summary means no activity history: nothing to reconstruct,
	// not an error.
	summary := h.Service.GetUserSession(c.Request.Context(), userID)

	c.JSON(http.StatusOK, gin.H{
		"user":           user,
		"session":        summary,
		"pollIntervalMs": dashboard.DetailViewInterval.Milliseconds(),
	})
}

// GetUserActivities renders a user's recent activity feed.
func (h *AdminHandlers) GetUserActivities(c *gin.Context) {
	userID := c.Param("id")

	limit, ok := parseLimit(c, 50)
	if !ok {
		return
	}

	events := h.Service.GetUserActivities(c.Request.Context(), userID, limit)
	if events == nil {
		events = []models.ActivityEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"activities": events})
}

// GetAllActivities renders the global activity feed.
func (h *AdminHandlers) GetAllActivities(c *gin.Context) {
	limit, ok := parseLimit(c, 100)
	if !ok {
		return
	}

	events := h.Service.GetAllActivities(c.Request.Context(), limit)
	if events == nil {
		events = []models.ActivityEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"activities": events})
}

func parseLimit(c *gin.Context, def int) (int, bool) {
	limitParam := c.Query("limit")
	if limitParam == "" {
		return def, true
	}
	limit, err := strconv.Atoi(limitParam)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
		return 0, false
	}
	return limit, true
}
