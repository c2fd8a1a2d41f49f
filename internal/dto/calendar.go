package dto

import "github.com/vistari-app/vistari-api/internal/models"

// GridInfo describes the vertical geometry of the week view so clients
// can lay out items without reimplementing the math.
type GridInfo struct {
	StartHour     int     `json:"start_hour"`
	EndHour       int     `json:"end_hour"`
	HourHeight    float64 `json:"hour_height"`
	MinItemHeight float64 `json:"min_item_height"`
	Rows          int     `json:"rows"`
}

// CalendarEntry is a calendar item decorated with its pixel placement
// on the time grid.
type CalendarEntry struct {
	models.CalendarItem
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// CalendarDay groups one day's entries.
type CalendarDay struct {
	Date    string          `json:"date"`
	Entries []CalendarEntry `json:"entries"`
}

// CalendarWeek is the full payload for the week view.
type CalendarWeek struct {
	WeekOf       string        `json:"week_of"`
	PreviousWeek string        `json:"previous_week"`
	NextWeek     string        `json:"next_week"`
	Grid         GridInfo      `json:"grid"`
	Days         []CalendarDay `json:"days"`
}

// MoveRequest asks to move one calendar item to another day. The source
// reference must match a live item in the current snapshot.
type MoveRequest struct {
	TimetableID string           `json:"timetable_id" validate:"required"`
	Source      models.SourceRef `json:"source" validate:"required"`
	TargetDate  string           `json:"target_date" validate:"required"`
}
