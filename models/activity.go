package models

import (
	"encoding/json"
	"time"
)

// ActivityType is the closed set of user actions the tracker records.
type ActivityType string

const (
	ActivityLogin            ActivityType = "login"
	ActivityLogout           ActivityType = "logout"
	ActivityPageView         ActivityType = "page_view"
	ActivityProductView      ActivityType = "product_view"
	ActivityCartAdd          ActivityType = "cart_add"
	ActivityCartRemove       ActivityType = "cart_remove"
	ActivityOrderCreate      ActivityType = "order_create"
	ActivityProfileUpdate    ActivityType = "profile_update"
	ActivitySearch           ActivityType = "search"
	ActivityCheckoutStart    ActivityType = "checkout_start"
	ActivityCheckoutComplete ActivityType = "checkout_complete"
)

// IsValid reports whether t is one of the known activity types.
func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityLogin, ActivityLogout, ActivityPageView, ActivityProductView,
		ActivityCartAdd, ActivityCartRemove, ActivityOrderCreate,
		ActivityProfileUpdate, ActivitySearch, ActivityCheckoutStart,
		ActivityCheckoutComplete:
		return true
	default:
		return false
	}
}

// ActivityEvent is one immutable record of a user action. Rows are
// append-only; nothing in this service mutates or deletes them.
type ActivityEvent struct {
	EventID      string          `json:"eventId"`
	UserID       string          `json:"userId"`
	ActivityType ActivityType    `json:"activityType"`
	PageURL      string          `json:"pageUrl,omitempty"`
	ProductID    string          `json:"productId,omitempty"`
	Details      json.RawMessage `json:"details,omitempty"`
	IPAddress    string          `json:"ipAddress,omitempty"`
	UserAgent    string          `json:"userAgent,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// PresenceRecord is the per-user online-status row. One row per user,
// overwritten on every heartbeat or lifecycle flip.
type PresenceRecord struct {
	UserID      string    `json:"userId"`
	LastSeen    time.Time `json:"lastSeen"`
	CurrentPage string    `json:"currentPage"`
	IsOnline    bool      `json:"isOnline"`
}

// OnlineUser is a presence row joined with user display fields for the
// admin dashboard.
type OnlineUser struct {
	PresenceRecord
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// SessionSummary is a derived view reconstructed from a user's most
// recent activity events plus their presence row. It is never persisted.
// CartItems is the user's current cart snapshot, not a replay of cart
// events in the activity log.
type SessionSummary struct {
	UserID       string     `json:"userId"`
	SessionStart time.Time  `json:"sessionStart"`
	LastActivity time.Time  `json:"lastActivity"`
	PagesVisited []string   `json:"pagesVisited"`
	TotalTimeMs  int64      `json:"totalTimeMs"`
	CartItems    []CartItem `json:"cartItems"`
	IsActive     bool       `json:"isActive"`
}
