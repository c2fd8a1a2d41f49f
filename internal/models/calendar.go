package models

import "fmt"

// ItemKind discriminates calendar item sources.
type ItemKind string

const (
	ItemKindSession ItemKind = "session"
	ItemKindEvent   ItemKind = "event"
)

// SourceRef carries enough information to map a calendar item back to
// its originating record: a (date key, index) pair for sessions, an
// event id for events.
type SourceRef struct {
	Kind    ItemKind `json:"kind"`
	DateKey string   `json:"date_key,omitempty"`
	Index   int      `json:"index,omitempty"`
	EventID string   `json:"event_id,omitempty"`
}

// CalendarItem is a derived, render-only value unifying sessions and
// events for the week view. Items are recomputed on every fetch and
// never persisted; any change round-trips through the source record.
type CalendarItem struct {
	ID        string    `json:"id"`
	Kind      ItemKind  `json:"kind"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Type      string    `json:"type,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Source    SourceRef `json:"source"`
}

// SessionItemID builds the deterministic id for a session item.
func SessionItemID(dateKey string, index int) string {
	return fmt.Sprintf("session-%s-%d", dateKey, index)
}

// EventItemID builds the deterministic id for an event item.
func EventItemID(eventID string) string {
	return fmt.Sprintf("event-%s", eventID)
}
