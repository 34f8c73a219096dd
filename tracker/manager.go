package tracker

import (
	"context"
	"log"
	"time"
)

// Manager owns the session registry and builds sessions with the shared
// store wiring. Handlers go through it so they never touch store
// plumbing directly.
type Manager struct {
	activities ActivityStore
	presence   PresenceStore
	registry   *Registry

	lookupIP func(ctx context.Context) string
	hbEvery  time.Duration
	now      func() time.Time
}

type ManagerConfig struct {
	Activities ActivityStore
	Presence   PresenceStore

	LookupIP          func(ctx context.Context) string
	HeartbeatInterval time.Duration
	Now               func() time.Time
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{
		activities: cfg.Activities,
		presence:   cfg.Presence,
		registry:   NewRegistry(),
		lookupIP:   cfg.LookupIP,
		hbEvery:    cfg.HeartbeatInterval,
		now:        cfg.Now,
	}
}

// StartSession creates and starts a tracker session for the user and
// registers it under the auth token. An existing session under the same
// token is ended first.
func (m *Manager) StartSession(ctx context.Context, token, userID, clientIP, userAgent string) *Session {
	if prev := m.registry.Remove(token); prev != nil {
		prev.End(ctx)
	}

	s := NewSession(userID, SessionConfig{
		Activities:        m.activities,
		Presence:          m.presence,
		LookupIP:          m.lookupIP,
		ClientIP:          clientIP,
		UserAgent:         userAgent,
		HeartbeatInterval: m.hbEvery,
		Now:               m.now,
	})
	s.Start(ctx)
	m.registry.Put(token, s)
	return s
}

// EndSession ends and unregisters the session for the token, if any.
func (m *Manager) EndSession(ctx context.Context, token string) {
	if s := m.registry.Remove(token); s != nil {
		s.End(ctx)
	}
}

// Session returns the live session for the token.
func (m *Manager) Session(token string) (*Session, bool) {
	return m.registry.Get(token)
}

// ActiveSessions reports how many sessions are currently registered.
func (m *Manager) ActiveSessions() int {
	return m.registry.Len()
}

// ReapIdle ends every session whose last recorded activity is older
// than idleAfter and returns how many were ended. A closed browser
// sends no logout, so without this sweep the session and its heartbeat
// goroutine would outlive the client forever.
func (m *Manager) ReapIdle(ctx context.Context, idleAfter time.Duration) int {
	cutoff := m.now().Add(-idleAfter)
	reaped := 0
	for token, s := range m.registry.Snapshot() {
		if s.LastActivity().Before(cutoff) {
			m.EndSession(ctx, token)
			reaped++
		}
	}
	if reaped > 0 {
		log.Printf("Session reaper ended %d idle session(s)", reaped)
	}
	return reaped
}

// StartReaper sweeps idle sessions every interval until ctx is
// cancelled.
func (m *Manager) StartReaper(ctx context.Context, every, idleAfter time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.ReapIdle(ctx, idleAfter)
			}
		}
	}()
}
