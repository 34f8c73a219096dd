package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"yeniliko/api/database"
	"yeniliko/api/models"
)

// ActivityStore persists the append-only user_activities event log in
// ClickHouse. Rows are never updated or deleted here; retention is table
// policy (TTL), not application logic.
type ActivityStore struct {
	DB *database.ClickHouseClient
}

func NewActivityStore(chClient *database.ClickHouseClient) *ActivityStore {
	return &ActivityStore{
		DB: chClient,
	}
}

// InsertActivity appends a single activity event.
func (s *ActivityStore) InsertActivity(ctx context.Context, event models.ActivityEvent) error {
	return s.InsertActivities(ctx, []models.ActivityEvent{event})
}

// InsertActivities appends a batch of activity events.
func (s *ActivityStore) InsertActivities(ctx context.Context, events []models.ActivityEvent) error {
	if len(events) == 0 {
		return nil
	}

	// Column order must match the user_activities table schema.
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO user_activities (
			event_id, user_id, activity_type, page_url, product_id,
			details, ip_address, user_agent, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		err := batch.Append(
			event.EventID,
			event.UserID,
			string(event.ActivityType),
			event.PageURL,
			event.ProductID,
			string(event.Details),
			event.IPAddress,
			event.UserAgent,
			event.CreatedAt,
		)
		if err != nil {
			log.Printf("Error appending event to batch (EventID: %s): %v", event.EventID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	return nil
}

// QueryActivities returns activity events newest-first. An empty userID
// returns events across all users (admin feed).
func (s *ActivityStore) QueryActivities(ctx context.Context, userID string, limit int) ([]models.ActivityEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT event_id, user_id, activity_type, page_url, product_id,
		       details, ip_address, user_agent, created_at
		FROM user_activities
	`
	var args []interface{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var results []models.ActivityEvent
	for rows.Next() {
		var (
			event        models.ActivityEvent
			activityType string
			details      string
			createdAt    time.Time
		)
		if err := rows.Scan(
			&event.EventID,
			&event.UserID,
			&activityType,
			&event.PageURL,
			&event.ProductID,
			&details,
			&event.IPAddress,
			&event.UserAgent,
			&createdAt,
		); err != nil {
			log.Printf("Error scanning activity row: %v", err)
			continue
		}
		event.ActivityType = models.ActivityType(activityType)
		if details != "" {
			event.Details = []byte(details)
		}
		event.CreatedAt = createdAt
		results = append(results, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during activities query: %w", err)
	}

	return results, nil
}
