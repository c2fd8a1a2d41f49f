package schedule

import (
	"fmt"
	"time"

	appErrors "github.com/vistari-app/vistari-api/pkg/errors"
)

// DateKeyLayout is the ISO date format used as schedule map keys.
const DateKeyLayout = "2006-01-02"

// WeekWindow is a Monday-anchored span of exactly seven consecutive
// calendar days.
type WeekWindow struct {
	start time.Time
}

// WindowContaining returns the week window holding the given instant.
func WindowContaining(t time.Time) WeekWindow {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	// Weekday is Sunday-based; shift so Monday maps to zero.
	offset := (int(day.Weekday()) + 6) % 7
	return WeekWindow{start: day.AddDate(0, 0, -offset)}
}

// ParseWindow resolves a YYYY-MM-DD string to the window containing it.
func ParseWindow(dateKey string) (WeekWindow, error) {
	day, err := time.Parse(DateKeyLayout, dateKey)
	if err != nil {
		return WeekWindow{}, appErrors.Clone(appErrors.ErrFormat, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", dateKey))
	}
	return WindowContaining(day), nil
}

// Start returns the window's Monday at midnight UTC.
func (w WeekWindow) Start() time.Time {
	return w.start
}

// End returns the final instant of the window's Sunday.
func (w WeekWindow) End() time.Time {
	return w.start.AddDate(0, 0, 7).Add(-time.Nanosecond)
}

// Next returns the window advanced by exactly seven days.
func (w WeekWindow) Next() WeekWindow {
	return WeekWindow{start: w.start.AddDate(0, 0, 7)}
}

// Previous returns the window receded by exactly seven days.
func (w WeekWindow) Previous() WeekWindow {
	return WeekWindow{start: w.start.AddDate(0, 0, -7)}
}

// Contains reports whether the instant falls on one of the window's days.
func (w WeekWindow) Contains(t time.Time) bool {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(w.start) && day.Before(w.start.AddDate(0, 0, 7))
}

// DateKeys returns the seven ISO date keys covered by the window.
func (w WeekWindow) DateKeys() []string {
	keys := make([]string, 7)
	for i := 0; i < 7; i++ {
		keys[i] = w.start.AddDate(0, 0, i).Format(DateKeyLayout)
	}
	return keys
}

// Key returns the window's Monday as an ISO date key.
func (w WeekWindow) Key() string {
	return w.start.Format(DateKeyLayout)
}

// WeekNavigator is a long-lived cursor over calendar weeks. Transitions
// replace the cursor value; nothing else is coupled to it.
type WeekNavigator struct {
	now     func() time.Time
	current WeekWindow
}

// NewWeekNavigator anchors the cursor on the week containing now().
func NewWeekNavigator(now func() time.Time) *WeekNavigator {
	if now == nil {
		now = time.Now
	}
	return &WeekNavigator{now: now, current: WindowContaining(now())}
}

// Current returns the cursor's week.
func (n *WeekNavigator) Current() WeekWindow {
	return n.current
}

// Next advances the cursor by one week and returns it.
func (n *WeekNavigator) Next() WeekWindow {
	n.current = n.current.Next()
	return n.current
}

// Previous recedes the cursor by one week and returns it.
func (n *WeekNavigator) Previous() WeekWindow {
	n.current = n.current.Previous()
	return n.current
}

// ResetToToday re-anchors the cursor on the week containing now().
func (n *WeekNavigator) ResetToToday() WeekWindow {
	n.current = WindowContaining(n.now())
	return n.current
}
