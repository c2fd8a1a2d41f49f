package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Session types as stored in timetable schedules.
const (
	SessionTypeRevision = "revision"
	SessionTypeHomework = "homework"
	SessionTypeBreak    = "break"
	SessionTypeOther    = "other"
)

// Session is one planned study block inside a timetable schedule. It has
// no identity of its own; within a timetable it is addressed by its date
// key and index in that date's list.
type Session struct {
	Time     string `json:"time"`
	Subject  string `json:"subject"`
	Topic    string `json:"topic"`
	Duration int    `json:"duration"`
	Type     string `json:"type"`
	Notes    string `json:"notes"`
	TestDate string `json:"testDate,omitempty"`
}

// Schedule maps ISO date keys (YYYY-MM-DD) to the ordered sessions
// planned for that day. The invariant maintained by every writer is that
// a present key always maps to a non-empty list.
type Schedule map[string][]Session

// Value serialises the schedule for the JSONB column.
func (s Schedule) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}

// Scan reads the schedule back from the JSONB column.
func (s *Schedule) Scan(src interface{}) error {
	if src == nil {
		*s = Schedule{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported schedule column type %T", src)
	}
	return json.Unmarshal(raw, s)
}

// SessionCount returns the total number of sessions across all dates.
func (s Schedule) SessionCount() int {
	total := 0
	for _, sessions := range s {
		total += len(sessions)
	}
	return total
}

// Timetable owns a date-keyed session schedule.
type Timetable struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Schedule  Schedule  `db:"schedule" json:"schedule"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
