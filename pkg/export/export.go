package export

import "time"

// Item is one calendar entry in an exported week.
type Item struct {
	Date    string
	Start   string
	End     string
	Title   string
	Kind    string
	Subject string
	Type    string

	StartAt time.Time
	EndAt   time.Time
}

// Week is a flattened calendar week prepared for export.
type Week struct {
	Owner  string
	WeekOf string
	Items  []Item
}
