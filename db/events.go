// ABOUTME: Repository for mirrored calendar event records
// ABOUTME: Insert, list, lookup and delete keyed by the remote event id
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/calmirror/models"
)

var ErrInvalidEvent = errors.New("invalid event")

// EventsRepository stores the local mirror of remote events.
type EventsRepository struct {
	db *sql.DB
}

// NewEventsRepository creates a new events repository.
func NewEventsRepository(db *sql.DB) *EventsRepository {
	return &EventsRepository{db: db}
}

// Create inserts a new record, assigning its ID and creation time.
func (r *EventsRepository) Create(ctx context.Context, event *models.Event) error {
	if event == nil || event.RemoteEventID == "" {
		return ErrInvalidEvent
	}

	event.ID = uuid.New()
	event.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (id, remote_event_id, summary, created_at)
		VALUES (?, ?, ?, ?)
	`, event.ID.String(), event.RemoteEventID, event.Summary, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

// GetByRemoteID returns the record for a remote event id, or nil if none exists.
func (r *EventsRepository) GetByRemoteID(ctx context.Context, remoteEventID string) (*models.Event, error) {
	var event models.Event
	var id string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, remote_event_id, summary, created_at
		FROM events WHERE remote_event_id = ?
	`, remoteEventID).Scan(&id, &event.RemoteEventID, &event.Summary, &event.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	event.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("corrupt event id %q: %w", id, err)
	}

	return &event, nil
}

// List returns every record, oldest first.
func (r *EventsRepository) List(ctx context.Context) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, remote_event_id, summary, created_at
		FROM events
		ORDER BY created_at, remote_event_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		var id string
		if err := rows.Scan(&id, &e.RemoteEventID, &e.Summary, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("corrupt event id %q: %w", id, err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// DeleteByRemoteID removes the record matching remoteEventID.
// It reports whether a record was removed; no match is not an error.
func (r *EventsRepository) DeleteByRemoteID(ctx context.Context, remoteEventID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE remote_event_id = ?`, remoteEventID)
	if err != nil {
		return false, fmt.Errorf("failed to delete event: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
