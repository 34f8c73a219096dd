package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"yeniliko/api/models"
)

// PresenceStore keeps one row per user in the user_online_status table.
// Every write is an idempotent upsert keyed by user_id; concurrent
// writers race benignly because each write carries a fresh last_seen.
type PresenceStore struct {
	db *sql.DB
}

func NewPresenceStore(db *sql.DB) *PresenceStore {
	return &PresenceStore{db: db}
}

// UpsertPresence overwrites the user's presence row.
func (s *PresenceStore) UpsertPresence(ctx context.Context, rec models.PresenceRecord) error {
	query := `
		INSERT INTO user_online_status (user_id, last_seen, current_page, is_online)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			last_seen = EXCLUDED.last_seen,
			current_page = EXCLUDED.current_page,
			is_online = EXCLUDED.is_online;
	`
	_, err := s.db.ExecContext(ctx, query, rec.UserID, rec.LastSeen, rec.CurrentPage, rec.IsOnline)
	if err != nil {
		return fmt.Errorf("failed to upsert presence for user %s: %w", rec.UserID, err)
	}
	return nil
}

// GetPresence returns the user's presence row, or nil if none exists.
// The stored is_online flag is returned as-is; staleness filtering is
// the caller's concern.
func (s *PresenceStore) GetPresence(ctx context.Context, userID string) (*models.PresenceRecord, error) {
	rec := &models.PresenceRecord{}
	query := `
		SELECT user_id, last_seen, current_page, is_online
		FROM user_online_status
		WHERE user_id = $1;
	`
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&rec.UserID,
		&rec.LastSeen,
		&rec.CurrentPage,
		&rec.IsOnline,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get presence for user %s: %w", userID, err)
	}
	return rec, nil
}

// QueryOnline returns presence rows flagged online whose last_seen is at
// or after staleCutoff, newest-first, joined with user display fields.
// Rows stuck at is_online=true after a crash fall out once they age past
// the cutoff.
func (s *PresenceStore) QueryOnline(ctx context.Context, staleCutoff time.Time) ([]models.OnlineUser, error) {
	query := `
		SELECT s.user_id, s.last_seen, s.current_page, s.is_online,
		       u.email, u.first_name, u.last_name, u.role
		FROM user_online_status s
		JOIN users u ON u.id = s.user_id
		WHERE s.is_online = TRUE AND s.last_seen >= $1
		ORDER BY s.last_seen DESC;
	`
	rows, err := s.db.QueryContext(ctx, query, staleCutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query online presence: %w", err)
	}
	defer rows.Close()

	var results []models.OnlineUser
	for rows.Next() {
		var ou models.OnlineUser
		if err := rows.Scan(
			&ou.UserID,
			&ou.LastSeen,
			&ou.CurrentPage,
			&ou.IsOnline,
			&ou.Email,
			&ou.FirstName,
			&ou.LastName,
			&ou.Role,
		); err != nil {
			return nil, fmt.Errorf("failed to scan online presence row: %w", err)
		}
		results = append(results, ou)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during online presence query: %w", err)
	}

	return results, nil
}
