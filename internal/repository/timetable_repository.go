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

// TimetableRepository persists timetables and their date-keyed session
// schedules. The schedule column is JSONB holding the wire shape
// {isoDate: Session[]} unchanged.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs a timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// ListByUser returns a user's timetables, newest first.
func (r *TimetableRepository) ListByUser(ctx context.Context, userID string) ([]models.Timetable, error) {
	const query = `SELECT id, user_id, name, schedule, created_at, updated_at FROM timetables WHERE user_id = $1 ORDER BY created_at DESC`
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, userID); err != nil {
		return nil, fmt.Errorf("list timetables: %w", err)
	}
	return timetables, nil
}

// GetByID fetches a timetable.
func (r *TimetableRepository) GetByID(ctx context.Context, id string) (*models.Timetable, error) {
	const query = `SELECT id, user_id, name, schedule, created_at, updated_at FROM timetables WHERE id = $1 LIMIT 1`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get timetable: %w", err)
	}
	return &timetable, nil
}

// Create inserts a timetable.
func (r *TimetableRepository) Create(ctx context.Context, timetable *models.Timetable) error {
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	timetable.CreatedAt = now
	timetable.UpdatedAt = now
	const query = `INSERT INTO timetables (id, user_id, name, schedule, created_at, updated_at)
VALUES (:id, :user_id, :name, :schedule, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, timetable); err != nil {
		return fmt.Errorf("create timetable: %w", err)
	}
	return nil
}

// UpdateSchedule replaces a timetable's schedule wholesale. Moves are
// persisted through this single write so a failed write leaves the
// stored schedule exactly as it was.
func (r *TimetableRepository) UpdateSchedule(ctx context.Context, id string, schedule models.Schedule) error {
	const query = `UPDATE timetables SET schedule = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, schedule, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update timetable schedule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a timetable.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM timetables WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	return nil
}
