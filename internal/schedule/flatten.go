package schedule

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/vistari-app/vistari-api/internal/models"
	"github.com/vistari-app/vistari-api/pkg/timegrid"
)

// Flatten converts a stored schedule plus standalone events into the
// unified, render-ready item list for one week. Events come first so
// they render with visual priority; within each kind items follow
// source order, with date keys walked in sorted order so repeated calls
// over the same input produce identical output.
//
// A session with a malformed time or non-positive duration is skipped
// with a warning rather than failing the whole week.
func Flatten(window WeekWindow, sched models.Schedule, events []models.Event, logger *zap.Logger) []models.CalendarItem {
	if logger == nil {
		logger = zap.NewNop()
	}

	items := make([]models.CalendarItem, 0, len(events)+sched.SessionCount())

	for _, ev := range events {
		if !window.Contains(ev.StartTime) {
			continue
		}
		start := ev.StartTime.UTC()
		items = append(items, models.CalendarItem{
			ID:        models.EventItemID(ev.ID),
			Kind:      models.ItemKindEvent,
			Title:     ev.Title,
			Date:      start.Format(DateKeyLayout),
			StartTime: start.Format("15:04"),
			EndTime:   ev.EndTime.UTC().Format("15:04"),
			Source:    models.SourceRef{Kind: models.ItemKindEvent, EventID: ev.ID},
		})
	}

	dateKeys := make([]string, 0, len(sched))
	for key := range sched {
		dateKeys = append(dateKeys, key)
	}
	sort.Strings(dateKeys)

	for _, key := range dateKeys {
		day, err := time.Parse(DateKeyLayout, key)
		if err != nil {
			logger.Warn("skipping schedule date with malformed key", zap.String("date_key", key), zap.Error(err))
			continue
		}
		if !window.Contains(day) {
			continue
		}
		for i, sess := range sched[key] {
			item, err := sessionItem(key, i, sess)
			if err != nil {
				logger.Warn("skipping malformed session",
					zap.String("date_key", key),
					zap.Int("index", i),
					zap.Error(err))
				continue
			}
			items = append(items, item)
		}
	}

	return items
}

func sessionItem(dateKey string, index int, sess models.Session) (models.CalendarItem, error) {
	startMin, err := timegrid.ParseClock(sess.Time)
	if err != nil {
		return models.CalendarItem{}, err
	}
	if sess.Duration <= 0 {
		return models.CalendarItem{}, fmt.Errorf("non-positive duration %d", sess.Duration)
	}
	return models.CalendarItem{
		ID:        models.SessionItemID(dateKey, index),
		Kind:      models.ItemKindSession,
		Title:     sess.Topic,
		Date:      dateKey,
		StartTime: sess.Time,
		EndTime:   clockString(startMin + sess.Duration),
		Type:      sess.Type,
		Subject:   sess.Subject,
		Source:    models.SourceRef{Kind: models.ItemKindSession, DateKey: dateKey, Index: index},
	}, nil
}

// clockString renders minutes-since-midnight as HH:MM, wrapping past
// midnight the way the original week view did.
func clockString(minutes int) string {
	minutes %= 24 * 60
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
