package tracker

import (
	"context"
	"log"
	"time"

	"yeniliko/api/models"
)

// sessionWindow bounds how many recent events a session reconstruction
// replays. With more history than this, sessionStart is the window edge,
// not the true first event.
const sessionWindow = 100

// Service answers the dashboard's read queries: session reconstruction,
// online users, and activity feeds. Read failures degrade to empty
// results; the dashboard cannot distinguish a down store from nothing to
// show, which is accepted.
type Service struct {
	activities ActivityStore
	presence   PresenceStore
	carts      CartSource
	now        func() time.Time
}

func NewService(activities ActivityStore, presence PresenceStore, carts CartSource) *Service {
	return &Service{
		activities: activities,
		presence:   presence,
		carts:      carts,
		now:        time.Now,
	}
}

// GetUserSession reconstructs a session summary from the user's newest
// events plus their presence row. A user with no events has no session
// to reconstruct and yields nil. IsActive mirrors the stored presence
// flag with no staleness filtering; only online-user listings apply the
// 5-minute cutoff.
func (s *Service) GetUserSession(ctx context.Context, userID string) *models.SessionSummary {
	events, err := s.activities.QueryActivities(ctx, userID, sessionWindow)
	if err != nil {
		log.Printf("Get user session failed (user=%s): %v", userID, err)
		return nil
	}
	if len(events) == 0 {
		return nil
	}

	pres, err := s.presence.GetPresence(ctx, userID)
	if err != nil {
		log.Printf("Get presence failed (user=%s): %v", userID, err)
	}

	// Events arrive newest-first: the window's oldest event is last.
	sessionStart := events[len(events)-1].CreatedAt
	lastActivity := events[0].CreatedAt

	seen := make(map[string]bool)
	var pages []string
	for _, ev := range events {
		if ev.ActivityType != models.ActivityPageView || ev.PageURL == "" {
			continue
		}
		if !seen[ev.PageURL] {
			seen[ev.PageURL] = true
			pages = append(pages, ev.PageURL)
		}
	}

	summary := &models.SessionSummary{
		UserID:       userID,
		SessionStart: sessionStart,
		LastActivity: lastActivity,
		PagesVisited: pages,
		TotalTimeMs:  lastActivity.Sub(sessionStart).Milliseconds(),
		IsActive:     pres != nil && pres.IsOnline,
	}

	cartItems, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		log.Printf("Get cart items failed (user=%s): %v", userID, err)
	}
	summary.CartItems = cartItems

	return summary
}

// GetOnlineUsers lists users whose presence is flagged online and fresh
// within the staleness window, newest-first. Store failures return an
// empty list, indistinguishable from no one being online.
func (s *Service) GetOnlineUsers(ctx context.Context) []models.OnlineUser {
	cutoff := s.now().Add(-StaleAfter)
	users, err := s.presence.QueryOnline(ctx, cutoff)
	if err != nil {
		log.Printf("Get online users failed: %v", err)
		return nil
	}
	return users
}

// GetUserActivities returns the user's recent events, newest-first.
func (s *Service) GetUserActivities(ctx context.Context, userID string, limit int) []models.ActivityEvent {
	if limit <= 0 {
		limit = 50
	}
	events, err := s.activities.QueryActivities(ctx, userID, limit)
	if err != nil {
		log.Printf("Get user activities failed (user=%s): %v", userID, err)
		return nil
	}
	return events
}

// GetAllActivities returns recent events across all users for the admin
// feed.
func (s *Service) GetAllActivities(ctx context.Context, limit int) []models.ActivityEvent {
	if limit <= 0 {
		limit = 100
	}
	events, err := s.activities.QueryActivities(ctx, "", limit)
	if err != nil {
		log.Printf("Get all activities failed: %v", err)
		return nil
	}
	return events
}
