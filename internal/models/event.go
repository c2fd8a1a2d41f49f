package models

import "time"

// Event is a standalone calendar entry owned by a user, independent of
// any timetable.
type Event struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Duration returns the event length.
func (e Event) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}
