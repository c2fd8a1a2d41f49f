package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vistari-app/vistari-api/internal/models"
)

// EventRepository persists standalone calendar events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ListInRange returns a user's events starting within [from, to].
func (r *EventRepository) ListInRange(ctx context.Context, userID string, from, to time.Time) ([]models.Event, error) {
	const query = `SELECT id, user_id, title, start_time, end_time, created_at, updated_at
FROM events WHERE user_id = $1 AND start_time >= $2 AND start_time <= $3 ORDER BY start_time ASC, id ASC`
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// GetByID fetches an event.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	const query = `SELECT id, user_id, title, start_time, end_time, created_at, updated_at FROM events WHERE id = $1 LIMIT 1`
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &event, nil
}

// Create inserts an event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	const query = `INSERT INTO events (id, user_id, title, start_time, end_time, created_at, updated_at)
VALUES (:id, :user_id, :title, :start_time, :end_time, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// UpdateTimes rewrites an event's start and end instants. Used by the
// reschedule path; nothing else about the record changes.
func (r *EventRepository) UpdateTimes(ctx context.Context, id string, start, end time.Time) error {
	const query = `UPDATE events SET start_time = $2, end_time = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, start, end, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update event times: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Update rewrites an event's title and times.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE events SET title = :title, start_time = :start_time, end_time = :end_time, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
