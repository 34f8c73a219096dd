// Package tracker implements the user activity and online-presence
// subsystem: per-session activity recording, heartbeat-maintained
// presence, navigation page-view deduplication, and session
// reconstruction for the admin dashboard.
package tracker

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"yeniliko/api/models"
)

// ActivityStore is the append/query boundary for activity events.
type ActivityStore interface {
	InsertActivity(ctx context.Context, event models.ActivityEvent) error
	QueryActivities(ctx context.Context, userID string, limit int) ([]models.ActivityEvent, error)
}

// PresenceStore is the upsert/query boundary for presence rows.
type PresenceStore interface {
	UpsertPresence(ctx context.Context, rec models.PresenceRecord) error
	GetPresence(ctx context.Context, userID string) (*models.PresenceRecord, error)
	QueryOnline(ctx context.Context, staleCutoff time.Time) ([]models.OnlineUser, error)
}

// CartSource supplies the live cart snapshot folded into session
// summaries.
type CartSource interface {
	GetCart(ctx context.Context, userID string) ([]models.CartItem, error)
}

const (
	// HeartbeatInterval is how often an active session refreshes its
	// presence row.
	HeartbeatInterval = 30 * time.Second

	// StaleAfter is the window beyond which an is_online row is treated
	// as offline by readers regardless of the stored flag.
	StaleAfter = 5 * time.Minute
)

// TrackOpts carries the optional fields of a recorded activity.
type TrackOpts struct {
	PageURL   string
	ProductID string
	Details   json.RawMessage
}

// SessionConfig wires a Session's collaborators. Zero-value fields fall
// back to production defaults.
type SessionConfig struct {
	Activities ActivityStore
	Presence   PresenceStore

	// LookupIP resolves a best-effort client network identity. Failures
	// degrade to "unknown"; they never block or fail a record.
	LookupIP func(ctx context.Context) string

	// ClientIP, when known from the HTTP request, is used directly and
	// LookupIP is skipped.
	ClientIP  string
	UserAgent string

	HeartbeatInterval time.Duration
	Now               func() time.Time
}

// Session tracks one authenticated user in one client. It replaces the
// original singleton tracker: all bookkeeping lives here and is guarded
// by a mutex, so multiple sessions coexist safely.
type Session struct {
	activities ActivityStore
	presence   PresenceStore
	lookupIP   func(ctx context.Context) string
	clientIP   string
	userAgent  string
	hbEvery    time.Duration
	now        func() time.Time

	mu           sync.Mutex
	ended        bool
	userID       string
	currentPage  string
	sessionStart time.Time
	lastActivity time.Time
	pagesVisited []string
	stopHB       chan struct{}
	hbDone       chan struct{}
}

// NewSession builds a tracker session for the given user. The session is
// inert until Start is called.
func NewSession(userID string, cfg SessionConfig) *Session {
	s := &Session{
		activities: cfg.Activities,
		presence:   cfg.Presence,
		lookupIP:   cfg.LookupIP,
		clientIP:   cfg.ClientIP,
		userAgent:  cfg.UserAgent,
		hbEvery:    cfg.HeartbeatInterval,
		now:        cfg.Now,
		userID:     userID,
	}
	if s.lookupIP == nil {
		s.lookupIP = LookupClientIP
	}
	if s.hbEvery <= 0 {
		s.hbEvery = HeartbeatInterval
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// UserID returns the tracked user.
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Start begins the session: presence flips online, a login event is
// recorded, and the heartbeat is armed. Calling Start on an already
// active session restarts the heartbeat without leaking the previous
// ticker. The landing page emits no page_view here; the first Navigate
// call does.
func (s *Session) Start(ctx context.Context) {
	s.stopHeartbeat()

	s.mu.Lock()
	now := s.now()
	s.ended = false
	s.sessionStart = now
	s.lastActivity = now
	s.pagesVisited = nil
	s.startHeartbeatLocked()
	s.mu.Unlock()

	s.upsertPresence(ctx, true)
	s.Track(ctx, models.ActivityLogin, TrackOpts{})
}

// End records the logout, stops the heartbeat, and forces the presence
// row offline. The offline upsert is issued synchronously before End
// returns; whether it survives client teardown is best-effort.
func (s *Session) End(ctx context.Context) {
	// Mark the session ended before tearing down, so a beacon racing
	// End cannot re-arm the heartbeat through ensureHeartbeat.
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()

	s.record(ctx, models.ActivityLogout, TrackOpts{})
	s.stopHeartbeat()
	s.upsertPresence(ctx, false)

	s.mu.Lock()
	s.userID = ""
	s.mu.Unlock()
}

// Track records one activity event. It is telemetry: store and lookup
// failures are logged and swallowed, and the caller gets no error to
// handle. PageURL defaults to the session's current page. A beacon
// reaching Track also proves the client is alive, so it resumes a
// heartbeat that Unload suspended.
func (s *Session) Track(ctx context.Context, activityType models.ActivityType, opts TrackOpts) {
	s.ensureHeartbeat(ctx)
	s.record(ctx, activityType, opts)
}

func (s *Session) record(ctx context.Context, activityType models.ActivityType, opts TrackOpts) {
	s.mu.Lock()
	userID := s.userID
	pageURL := opts.PageURL
	if pageURL == "" {
		pageURL = s.currentPage
	}
	s.lastActivity = s.now()
	now := s.lastActivity
	s.mu.Unlock()

	if userID == "" {
		log.Printf("Activity tracking skipped: no tracked user (type=%s)", activityType)
		return
	}

	ip := s.clientIP
	if ip == "" {
		ip = s.lookupIP(ctx)
	}

	event := models.ActivityEvent{
		EventID:      uuid.New().String(),
		UserID:       userID,
		ActivityType: activityType,
		PageURL:      pageURL,
		ProductID:    opts.ProductID,
		Details:      opts.Details,
		IPAddress:    ip,
		UserAgent:    s.userAgent,
		CreatedAt:    now,
	}

	if err := s.activities.InsertActivity(ctx, event); err != nil {
		log.Printf("Activity tracking error (user=%s type=%s): %v", userID, activityType, err)
	}
}

// Navigate reports a route change. Exactly one page_view is emitted per
// distinct path transition: repeated navigations to the current path are
// suppressed, while leaving and coming back records again. Programmatic
// pushes, replaces, and back/forward pops all funnel through here.
func (s *Session) Navigate(ctx context.Context, path string) {
	s.mu.Lock()
	if path == "" || path == s.currentPage {
		s.mu.Unlock()
		return
	}
	s.currentPage = path
	s.pagesVisited = append(s.pagesVisited, path)
	s.mu.Unlock()

	s.Track(ctx, models.ActivityPageView, TrackOpts{PageURL: path})
}

// CurrentPage returns the last observed path.
func (s *Session) CurrentPage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

// LastActivity returns when the session last recorded an event. The
// manager's idle reaper uses it to end abandoned sessions.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}
