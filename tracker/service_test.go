package tracker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yeniliko/api/models"
)

func seedEvents(store *fakeActivityStore, userID string, n int, start time.Time) []models.ActivityEvent {
	var events []models.ActivityEvent
	for i := 0; i < n; i++ {
		ev := models.ActivityEvent{
			EventID:      fmt.Sprintf("ev-%d", i),
			UserID:       userID,
			ActivityType: models.ActivitySearch,
			CreatedAt:    start.Add(time.Duration(i) * time.Second),
		}
		store.events = append(store.events, ev)
		events = append(events, ev)
	}
	return events
}

func TestGetUserSessionNoHistoryReturnsNil(t *testing.T) {
	svc := NewService(&fakeActivityStore{}, newFakePresenceStore(), &fakeCartSource{})

	assert.Nil(t, svc.GetUserSession(context.Background(), "ghost"))
}

func TestGetUserSessionStoreFailureReturnsNil(t *testing.T) {
	svc := NewService(&fakeActivityStore{insertErr: errStoreDown}, newFakePresenceStore(), &fakeCartSource{})

	assert.Nil(t, svc.GetUserSession(context.Background(), "u1"))
}

func TestGetUserSessionWindowBound(t *testing.T) {
	activities := &fakeActivityStore{}
	presence := newFakePresenceStore()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// 150 events: the reconstruction window holds the newest 100, so
	// sessionStart is event index 50, not the true first event.
	events := seedEvents(activities, "u1", 150, start)

	svc := NewService(activities, presence, &fakeCartSource{})
	summary := svc.GetUserSession(context.Background(), "u1")
	require.NotNil(t, summary)

	assert.Equal(t, events[50].CreatedAt, summary.SessionStart)
	assert.Equal(t, events[149].CreatedAt, summary.LastActivity)
	assert.Equal(t, events[149].CreatedAt.Sub(events[50].CreatedAt).Milliseconds(), summary.TotalTimeMs)
}

func TestGetUserSessionPagesVisitedDistinct(t *testing.T) {
	activities := &fakeActivityStore{}
	presence := newFakePresenceStore()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	paths := []string{"/products", "/products/1", "/products", "/cart", ""}
	for i, p := range paths {
		activities.events = append(activities.events, models.ActivityEvent{
			EventID:      fmt.Sprintf("pv-%d", i),
			UserID:       "u1",
			ActivityType: models.ActivityPageView,
			PageURL:      p,
			CreatedAt:    start.Add(time.Duration(i) * time.Second),
		})
	}
	// Non-page_view events never contribute to pagesVisited.
	activities.events = append(activities.events, models.ActivityEvent{
		EventID:      "pv-x",
		UserID:       "u1",
		ActivityType: models.ActivityProductView,
		PageURL:      "/products/2",
		CreatedAt:    start.Add(10 * time.Second),
	})

	svc := NewService(activities, presence, &fakeCartSource{})
	summary := svc.GetUserSession(context.Background(), "u1")
	require.NotNil(t, summary)

	assert.ElementsMatch(t, []string{"/products", "/products/1", "/cart"}, summary.PagesVisited)
}

func TestGetUserSessionMirrorsRawPresenceFlag(t *testing.T) {
	activities := &fakeActivityStore{}
	presence := newFakePresenceStore()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedEvents(activities, "u1", 3, start)

	// Stale but still flagged online: the session summary mirrors the
	// stored flag, only online-user listings apply the staleness cutoff.
	presence.rows["u1"] = models.PresenceRecord{
		UserID:   "u1",
		LastSeen: time.Now().Add(-time.Hour),
		IsOnline: true,
	}

	svc := NewService(activities, presence, &fakeCartSource{})
	summary := svc.GetUserSession(context.Background(), "u1")
	require.NotNil(t, summary)
	assert.True(t, summary.IsActive)

	assert.Empty(t, svc.GetOnlineUsers(context.Background()),
		"the same stale row must not appear in the online listing")
}

func TestGetUserSessionIncludesCartSnapshot(t *testing.T) {
	activities := &fakeActivityStore{}
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedEvents(activities, "u1", 2, start)

	carts := &fakeCartSource{items: []models.CartItem{
		{ProductID: "42", Name: "Ahşap Saat", Price: 249.90, Quantity: 1},
	}}

	svc := NewService(activities, newFakePresenceStore(), carts)
	summary := svc.GetUserSession(context.Background(), "u1")
	require.NotNil(t, summary)
	require.Len(t, summary.CartItems, 1)
	assert.Equal(t, "42", summary.CartItems[0].ProductID)
}

func TestGetUserSessionCartFailureDegradesToEmpty(t *testing.T) {
	activities := &fakeActivityStore{}
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedEvents(activities, "u1", 2, start)

	svc := NewService(activities, newFakePresenceStore(), &fakeCartSource{err: errStoreDown})
	summary := svc.GetUserSession(context.Background(), "u1")
	require.NotNil(t, summary)
	assert.Empty(t, summary.CartItems)
}

func TestGetOnlineUsersAppliesStalenessCutoff(t *testing.T) {
	presence := newFakePresenceStore()
	now := time.Now()

	presence.rows["fresh"] = models.PresenceRecord{UserID: "fresh", LastSeen: now.Add(-time.Minute), IsOnline: true}
	presence.rows["stale"] = models.PresenceRecord{UserID: "stale", LastSeen: now.Add(-10 * time.Minute), IsOnline: true}
	presence.rows["offline"] = models.PresenceRecord{UserID: "offline", LastSeen: now, IsOnline: false}

	svc := NewService(&fakeActivityStore{}, presence, &fakeCartSource{})
	online := svc.GetOnlineUsers(context.Background())

	require.Len(t, online, 1)
	assert.Equal(t, "fresh", online[0].UserID)
}

func TestGetOnlineUsersEmptyOnStoreFailure(t *testing.T) {
	presence := newFakePresenceStore()
	presence.queryErr = errStoreDown

	svc := NewService(&fakeActivityStore{}, presence, &fakeCartSource{})

	// An unreachable store reads as "no one online", never as an error.
	assert.Empty(t, svc.GetOnlineUsers(context.Background()))
}

func TestGetUserActivitiesNewestFirst(t *testing.T) {
	activities := &fakeActivityStore{}
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedEvents(activities, "u1", 5, start)
	seedEvents(activities, "u2", 3, start)

	svc := NewService(activities, newFakePresenceStore(), &fakeCartSource{})

	got := svc.GetUserActivities(context.Background(), "u1", 3)
	require.Len(t, got, 3)
	assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt))
	assert.True(t, got[1].CreatedAt.After(got[2].CreatedAt))

	all := svc.GetAllActivities(context.Background(), 100)
	assert.Len(t, all, 8)
}
