package tracker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"yeniliko/api/models"
)

// fakeClock hands out strictly increasing timestamps so event ordering
// in tests is deterministic.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fakeActivityStore struct {
	mu        sync.Mutex
	events    []models.ActivityEvent
	insertErr error
}

func (f *fakeActivityStore) InsertActivity(ctx context.Context, event models.ActivityEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeActivityStore) QueryActivities(ctx context.Context, userID string, limit int) ([]models.ActivityEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}

	var out []models.ActivityEvent
	for _, ev := range f.events {
		if userID == "" || ev.UserID == userID {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeActivityStore) byType(userID string, t models.ActivityType) []models.ActivityEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ActivityEvent
	for _, ev := range f.events {
		if ev.UserID == userID && ev.ActivityType == t {
			out = append(out, ev)
		}
	}
	return out
}

type fakePresenceStore struct {
	mu        sync.Mutex
	rows      map[string]models.PresenceRecord
	upserts   int
	upsertErr error
	queryErr  error
}

func newFakePresenceStore() *fakePresenceStore {
	return &fakePresenceStore{rows: make(map[string]models.PresenceRecord)}
}

func (f *fakePresenceStore) UpsertPresence(ctx context.Context, rec models.PresenceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.rows[rec.UserID] = rec
	f.upserts++
	return nil
}

func (f *fakePresenceStore) GetPresence(ctx context.Context, userID string) (*models.PresenceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.rows[userID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakePresenceStore) QueryOnline(ctx context.Context, staleCutoff time.Time) ([]models.OnlineUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var out []models.OnlineUser
	for _, rec := range f.rows {
		if rec.IsOnline && !rec.LastSeen.Before(staleCutoff) {
			out = append(out, models.OnlineUser{PresenceRecord: rec})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastSeen.After(out[j].LastSeen)
	})
	return out, nil
}

func (f *fakePresenceStore) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts
}

func (f *fakePresenceStore) row(userID string) (models.PresenceRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.rows[userID]
	return rec, ok
}

type fakeCartSource struct {
	items []models.CartItem
	err   error
}

func (f *fakeCartSource) GetCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

var errStoreDown = errors.New("store unreachable")
