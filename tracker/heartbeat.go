package tracker

import (
	"context"
	"log"
	"time"

	"yeniliko/api/models"
)

// startHeartbeatLocked arms the repeating presence refresh. Caller holds
// s.mu and must have stopped any previous heartbeat first, so repeated
// Starts never stack tickers.
func (s *Session) startHeartbeatLocked() {
	stop := make(chan struct{})
	done := make(chan struct{})
	s.stopHB = stop
	s.hbDone = done

	every := s.hbEvery
	go func() {
		defer close(done)
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.upsertPresence(context.Background(), true)
			}
		}
	}()
}

// stopHeartbeat cancels the repeating timer and waits for the heartbeat
// goroutine to drain. The wait happens without holding s.mu: the
// goroutine's final upsert needs the lock to complete.
func (s *Session) stopHeartbeat() {
	s.mu.Lock()
	stop, done := s.stopHB, s.hbDone
	s.stopHB, s.hbDone = nil, nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// ensureHeartbeat re-arms a heartbeat that Unload suspended, once a
// beacon proves the client is alive again. Resuming upserts presence
// online immediately rather than waiting for the first tick. No-op
// while the heartbeat is already running or the session has ended.
func (s *Session) ensureHeartbeat(ctx context.Context) {
	s.mu.Lock()
	if s.userID == "" || s.ended || s.stopHB != nil {
		s.mu.Unlock()
		return
	}
	s.startHeartbeatLocked()
	s.mu.Unlock()

	s.upsertPresence(ctx, true)
}

// SetVisible flips presence immediately when the client tab is hidden or
// shown, without waiting for the next heartbeat tick. A hidden tab reads
// as offline even though the session stays open; this is approximate
// presence, not exact session tracking.
func (s *Session) SetVisible(ctx context.Context, visible bool) {
	if visible {
		s.ensureHeartbeat(ctx)
	}
	s.upsertPresence(ctx, visible)
}

// Unload marks the user offline and suspends the heartbeat: the page is
// gone, so nothing attests client liveness and the server must not keep
// refreshing presence on the client's behalf. The offline write itself
// is best-effort; the 5-minute staleness window covers the case where
// the beacon never arrives at all. A later beacon from a revived page
// resumes the heartbeat.
func (s *Session) Unload(ctx context.Context) {
	s.stopHeartbeat()
	s.upsertPresence(ctx, false)
}

// upsertPresence writes the presence row with a fresh last_seen. Races
// between the heartbeat tick and lifecycle flips are benign: last write
// wins and the next tick self-corrects.
func (s *Session) upsertPresence(ctx context.Context, online bool) {
	s.mu.Lock()
	userID := s.userID
	page := s.currentPage
	now := s.now()
	s.mu.Unlock()

	if userID == "" {
		return
	}

	rec := models.PresenceRecord{
		UserID:      userID,
		LastSeen:    now,
		CurrentPage: page,
		IsOnline:    online,
	}
	if err := s.presence.UpsertPresence(ctx, rec); err != nil {
		log.Printf("Online status update error (user=%s): %v", userID, err)
	}
}
