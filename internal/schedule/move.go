package schedule

import (
	"fmt"
	"time"

	"github.com/vistari-app/vistari-api/internal/models"
	appErrors "github.com/vistari-app/vistari-api/pkg/errors"
	"github.com/vistari-app/vistari-api/pkg/timegrid"
)

// ItemAt resolves a source reference against a schedule/event snapshot,
// returning the calendar item a flatten of that snapshot would have
// produced for it. A session reference whose index no longer resolves
// yields ErrStaleReference; an unknown event id yields ErrNotFound.
func ItemAt(sched models.Schedule, events []models.Event, ref models.SourceRef) (models.CalendarItem, error) {
	switch ref.Kind {
	case models.ItemKindSession:
		sessions, ok := sched[ref.DateKey]
		if !ok || ref.Index < 0 || ref.Index >= len(sessions) {
			return models.CalendarItem{}, appErrors.Clone(appErrors.ErrStaleReference,
				fmt.Sprintf("no session at %s[%d]", ref.DateKey, ref.Index))
		}
		return sessionItem(ref.DateKey, ref.Index, sessions[ref.Index])
	case models.ItemKindEvent:
		for _, ev := range events {
			if ev.ID == ref.EventID {
				item := models.CalendarItem{
					ID:        models.EventItemID(ev.ID),
					Kind:      models.ItemKindEvent,
					Title:     ev.Title,
					Date:      ev.StartTime.UTC().Format(DateKeyLayout),
					StartTime: ev.StartTime.UTC().Format("15:04"),
					EndTime:   ev.EndTime.UTC().Format("15:04"),
					Source:    models.SourceRef{Kind: models.ItemKindEvent, EventID: ev.ID},
				}
				return item, nil
			}
		}
		return models.CalendarItem{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("event %s not found", ref.EventID))
	default:
		return models.CalendarItem{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown item kind %q", ref.Kind))
	}
}

// Move relocates a calendar item to another day and returns the new
// schedule and event states. The inputs are treated as an immutable
// snapshot: they are never modified, untouched date keys in the result
// share structure with the input, and on error the inputs are returned
// unchanged so the caller never observes a partially applied move.
//
// Only the date changes; the item keeps its time of day, and an event
// keeps its exact duration.
func Move(item models.CalendarItem, targetDate string, sched models.Schedule, events []models.Event) (models.Schedule, []models.Event, error) {
	targetDay, err := time.Parse(DateKeyLayout, targetDate)
	if err != nil {
		return sched, events, appErrors.Clone(appErrors.ErrFormat,
			fmt.Sprintf("invalid target date %q, expected YYYY-MM-DD", targetDate))
	}

	if targetDate == item.Date {
		return sched, events, nil
	}

	switch item.Kind {
	case models.ItemKindSession:
		next, err := moveSession(item, targetDate, sched)
		if err != nil {
			return sched, events, err
		}
		return next, events, nil
	case models.ItemKindEvent:
		nextEvents, err := moveEvent(item, targetDay, events)
		if err != nil {
			return sched, events, err
		}
		return sched, nextEvents, nil
	default:
		return sched, events, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown item kind %q", item.Kind))
	}
}

func moveSession(item models.CalendarItem, targetDate string, sched models.Schedule) (models.Schedule, error) {
	ref := item.Source
	sessions, ok := sched[ref.DateKey]
	if !ok || ref.Index < 0 || ref.Index >= len(sessions) {
		return nil, appErrors.Clone(appErrors.ErrStaleReference,
			fmt.Sprintf("no session at %s[%d]", ref.DateKey, ref.Index))
	}
	if _, err := timegrid.ParseClock(item.StartTime); err != nil {
		return nil, err
	}
	src := sessions[ref.Index]
	if src.Duration <= 0 {
		return nil, appErrors.Clone(appErrors.ErrFormat,
			fmt.Sprintf("session at %s[%d] has non-positive duration", ref.DateKey, ref.Index))
	}

	next := make(models.Schedule, len(sched)+1)
	for key, list := range sched {
		next[key] = list
	}

	remaining := make([]models.Session, 0, len(sessions)-1)
	remaining = append(remaining, sessions[:ref.Index]...)
	remaining = append(remaining, sessions[ref.Index+1:]...)
	if len(remaining) == 0 {
		// A date key must never map to an empty list.
		delete(next, ref.DateKey)
	} else {
		next[ref.DateKey] = remaining
	}

	moved := models.Session{
		Time:     item.StartTime,
		Subject:  src.Subject,
		Topic:    src.Topic,
		Duration: src.Duration,
		Type:     src.Type,
		Notes:    src.Notes,
		TestDate: src.TestDate,
	}
	existing := next[targetDate]
	target := make([]models.Session, 0, len(existing)+1)
	target = append(target, existing...)
	target = append(target, moved)
	next[targetDate] = target

	return next, nil
}

func moveEvent(item models.CalendarItem, targetDay time.Time, events []models.Event) ([]models.Event, error) {
	idx := -1
	for i, ev := range events {
		if ev.ID == item.Source.EventID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("event %s not found", item.Source.EventID))
	}

	ev := events[idx]
	start := ev.StartTime.UTC()
	newStart := time.Date(targetDay.Year(), targetDay.Month(), targetDay.Day(),
		start.Hour(), start.Minute(), start.Second(), 0, time.UTC)

	next := make([]models.Event, len(events))
	copy(next, events)
	next[idx].StartTime = newStart
	next[idx].EndTime = newStart.Add(ev.Duration())
	return next, nil
}
