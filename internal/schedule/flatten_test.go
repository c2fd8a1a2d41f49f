package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistari-app/vistari-api/internal/models"
)

func testWindow(t *testing.T) WeekWindow {
	t.Helper()
	w, err := ParseWindow("2024-01-01")
	require.NoError(t, err)
	return w
}

func TestFlattenOrdersEventsBeforeSessions(t *testing.T) {
	window := testWindow(t)
	sched := models.Schedule{
		"2024-01-02": {
			{Time: "09:00", Subject: "Maths", Topic: "Algebra", Duration: 60, Type: models.SessionTypeRevision},
			{Time: "11:00", Subject: "Maths", Topic: "Geometry", Duration: 45, Type: models.SessionTypeHomework},
		},
	}
	events := []models.Event{
		{
			ID:        "ev-1",
			Title:     "Dentist",
			StartTime: time.Date(2024, 1, 3, 14, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2024, 1, 3, 15, 0, 0, 0, time.UTC),
		},
	}

	items := Flatten(window, sched, events, nil)
	require.Len(t, items, 3)

	assert.Equal(t, models.ItemKindEvent, items[0].Kind)
	assert.Equal(t, "event-ev-1", items[0].ID)
	assert.Equal(t, "2024-01-03", items[0].Date)
	assert.Equal(t, "14:00", items[0].StartTime)
	assert.Equal(t, "15:00", items[0].EndTime)

	assert.Equal(t, "session-2024-01-02-0", items[1].ID)
	assert.Equal(t, "Algebra", items[1].Title)
	assert.Equal(t, "10:00", items[1].EndTime)
	assert.Equal(t, models.SourceRef{Kind: models.ItemKindSession, DateKey: "2024-01-02", Index: 0}, items[1].Source)

	assert.Equal(t, "session-2024-01-02-1", items[2].ID)
	assert.Equal(t, "11:45", items[2].EndTime)
}

func TestFlattenExcludesOutOfWindowEntries(t *testing.T) {
	window := testWindow(t)
	sched := models.Schedule{
		"2024-01-08": {{Time: "09:00", Topic: "Next week", Duration: 60}},
		"2023-12-31": {{Time: "09:00", Topic: "Last week", Duration: 60}},
	}
	events := []models.Event{
		{ID: "ev-out", Title: "Outside", StartTime: time.Date(2024, 1, 9, 9, 0, 0, 0, time.UTC), EndTime: time.Date(2024, 1, 9, 10, 0, 0, 0, time.UTC)},
	}

	items := Flatten(window, sched, events, nil)
	assert.Empty(t, items)
}

func TestFlattenSkipsMalformedSessionsWithoutFailing(t *testing.T) {
	window := testWindow(t)
	sched := models.Schedule{
		"2024-01-02": {
			{Time: "not-a-time", Topic: "Broken clock", Duration: 60},
			{Time: "10:00", Topic: "Zero duration", Duration: 0},
			{Time: "11:00", Topic: "Fine", Duration: 30},
		},
		"bogus-key": {{Time: "09:00", Topic: "Bad date", Duration: 60}},
	}

	items := Flatten(window, sched, nil, nil)
	require.Len(t, items, 1)
	assert.Equal(t, "Fine", items[0].Title)
	// Index reflects the stored position, not the surviving position.
	assert.Equal(t, 2, items[0].Source.Index)
}

func TestFlattenIsDeterministic(t *testing.T) {
	window := testWindow(t)
	sched := models.Schedule{
		"2024-01-05": {{Time: "08:00", Topic: "Physics", Duration: 60}},
		"2024-01-02": {{Time: "09:00", Topic: "Algebra", Duration: 60}},
		"2024-01-04": {{Time: "10:00", Topic: "History", Duration: 60}},
	}
	events := []models.Event{
		{ID: "ev-1", Title: "Match", StartTime: time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC), EndTime: time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC)},
	}

	first := Flatten(window, sched, events, nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Flatten(window, sched, events, nil))
	}

	// Sessions appear in sorted date key order.
	require.Len(t, first, 4)
	assert.Equal(t, "2024-01-02", first[1].Date)
	assert.Equal(t, "2024-01-04", first[2].Date)
	assert.Equal(t, "2024-01-05", first[3].Date)
}
