package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vistari-app/vistari-api/internal/dto"
	"github.com/vistari-app/vistari-api/internal/models"
	"github.com/vistari-app/vistari-api/internal/schedule"
	appErrors "github.com/vistari-app/vistari-api/pkg/errors"
	"github.com/vistari-app/vistari-api/pkg/timegrid"
)

type calendarTimetableRepository interface {
	GetByID(ctx context.Context, id string) (*models.Timetable, error)
	UpdateSchedule(ctx context.Context, id string, schedule models.Schedule) error
}

type calendarEventRepository interface {
	ListInRange(ctx context.Context, userID string, from, to time.Time) ([]models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	UpdateTimes(ctx context.Context, id string, start, end time.Time) error
}

// CalendarService produces week views and executes item moves. The
// flattened week is a pure projection of the timetable schedule plus
// the user's events; it is never stored, only cached.
type CalendarService struct {
	timetables calendarTimetableRepository
	events     calendarEventRepository
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	grid       timegrid.Grid
	cacheTTL   time.Duration

	// moves against the same timetable are serialized; the second
	// writer loses rather than waits
	mu     sync.Mutex
	moving map[string]struct{}
}

// NewCalendarService constructs a CalendarService.
func NewCalendarService(timetables calendarTimetableRepository, events calendarEventRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, grid timegrid.Grid, cacheTTL time.Duration) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CalendarService{
		timetables: timetables,
		events:     events,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		grid:       grid,
		cacheTTL:   cacheTTL,
		moving:     make(map[string]struct{}),
	}
}

// Week returns the flattened, grid-decorated week view for a timetable.
// weekOf may be any date inside the wanted week; empty means the week
// containing today. The second return reports a cache hit.
func (s *CalendarService) Week(ctx context.Context, userID, timetableID, weekOf string) (*dto.CalendarWeek, bool, error) {
	window, err := s.resolveWindow(weekOf)
	if err != nil {
		return nil, false, err
	}

	cacheKey := s.weekCacheKey(timetableID, window)
	var cached dto.CalendarWeek
	if s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, true, nil
	}

	week, err := s.buildWeek(ctx, userID, timetableID, window)
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.Set(ctx, cacheKey, week, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache calendar week", zap.String("key", cacheKey), zap.Error(err))
	}
	return week, false, nil
}

// MoveItem moves a session or event to another day and returns the
// refreshed week containing the target date. The item is re-resolved
// against a fresh snapshot first, so a stale drag from an outdated
// client view fails instead of displacing a sibling.
func (s *CalendarService) MoveItem(ctx context.Context, userID string, req dto.MoveRequest) (*dto.CalendarWeek, error) {
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordMove("error")
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload")
	}

	if !s.beginMove(req.TimetableID) {
		s.metrics.RecordMove("conflict")
		return nil, appErrors.Clone(appErrors.ErrConflict, "another move is in progress for this timetable")
	}
	defer s.endMove(req.TimetableID)

	timetable, err := s.loadTimetable(ctx, userID, req.TimetableID)
	if err != nil {
		s.metrics.RecordMove("error")
		return nil, err
	}

	events, err := s.eventsForRef(ctx, req.Source)
	if err != nil {
		s.metrics.RecordMove("error")
		return nil, err
	}
	for _, ev := range events {
		if ev.UserID != userID {
			s.metrics.RecordMove("error")
			return nil, appErrors.Clone(appErrors.ErrForbidden, "event belongs to another user")
		}
	}

	item, err := schedule.ItemAt(timetable.Schedule, events, req.Source)
	if err != nil {
		s.metrics.RecordMove("error")
		return nil, err
	}

	newSched, newEvents, err := schedule.Move(item, req.TargetDate, timetable.Schedule, events)
	if err != nil {
		s.metrics.RecordMove("error")
		return nil, err
	}

	window, err := schedule.ParseWindow(req.TargetDate)
	if err != nil {
		s.metrics.RecordMove("error")
		return nil, err
	}

	if req.TargetDate == item.Date {
		s.metrics.RecordMove("noop")
		return s.buildWeek(ctx, userID, req.TimetableID, window)
	}

	switch item.Kind {
	case models.ItemKindSession:
		if err := s.timetables.UpdateSchedule(ctx, req.TimetableID, newSched); err != nil {
			s.metrics.RecordMove("error")
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to persist schedule")
		}
	case models.ItemKindEvent:
		moved := newEvents[0]
		for _, ev := range newEvents {
			if models.EventItemID(ev.ID) == item.ID {
				moved = ev
				break
			}
		}
		if err := s.events.UpdateTimes(ctx, moved.ID, moved.StartTime, moved.EndTime); err != nil {
			s.metrics.RecordMove("error")
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to persist event times")
		}
	}

	if err := s.cache.Invalidate(ctx, fmt.Sprintf("calendar:%s:*", req.TimetableID)); err != nil {
		s.logger.Warn("failed to invalidate calendar cache", zap.String("timetable_id", req.TimetableID), zap.Error(err))
	}

	s.metrics.RecordMove("moved")
	s.logger.Info("calendar item moved",
		zap.String("timetable_id", req.TimetableID),
		zap.String("item_id", item.ID),
		zap.String("from", item.Date),
		zap.String("to", req.TargetDate))

	return s.buildWeek(ctx, userID, req.TimetableID, window)
}

func (s *CalendarService) beginMove(timetableID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.moving[timetableID]; busy {
		return false
	}
	s.moving[timetableID] = struct{}{}
	return true
}

func (s *CalendarService) endMove(timetableID string) {
	s.mu.Lock()
	delete(s.moving, timetableID)
	s.mu.Unlock()
}

func (s *CalendarService) resolveWindow(weekOf string) (schedule.WeekWindow, error) {
	if weekOf == "" {
		return schedule.NewWeekNavigator(nil).Current(), nil
	}
	return schedule.ParseWindow(weekOf)
}

func (s *CalendarService) weekCacheKey(timetableID string, window schedule.WeekWindow) string {
	return fmt.Sprintf("calendar:%s:%s", timetableID, window.Key())
}

func (s *CalendarService) loadTimetable(ctx context.Context, userID, timetableID string) (*models.Timetable, error) {
	timetable, err := s.timetables.GetByID(ctx, timetableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load timetable")
	}
	if timetable.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "timetable belongs to another user")
	}
	return timetable, nil
}

// eventsForRef loads the events the move needs to resolve its source
// reference. Session refs resolve without any events at all.
func (s *CalendarService) eventsForRef(ctx context.Context, ref models.SourceRef) ([]models.Event, error) {
	if ref.Kind != models.ItemKindEvent {
		return nil, nil
	}
	event, err := s.events.GetByID(ctx, ref.EventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load event")
	}
	return []models.Event{*event}, nil
}

func (s *CalendarService) buildWeek(ctx context.Context, userID, timetableID string, window schedule.WeekWindow) (*dto.CalendarWeek, error) {
	timetable, err := s.loadTimetable(ctx, userID, timetableID)
	if err != nil {
		return nil, err
	}

	events, err := s.events.ListInRange(ctx, userID, window.Start(), window.End())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list events")
	}

	start := time.Now()
	items := schedule.Flatten(window, timetable.Schedule, events, s.logger)
	s.metrics.ObserveFlatten(time.Since(start))

	week := &dto.CalendarWeek{
		WeekOf:       window.Key(),
		PreviousWeek: window.Previous().Key(),
		NextWeek:     window.Next().Key(),
		Grid: dto.GridInfo{
			StartHour:     s.grid.StartHour,
			EndHour:       s.grid.EndHour,
			HourHeight:    s.grid.HourHeight,
			MinItemHeight: s.grid.MinItemHeight,
			Rows:          s.grid.Rows(),
		},
		Days: make([]dto.CalendarDay, 0, 7),
	}

	byDate := make(map[string][]dto.CalendarEntry)
	for _, item := range items {
		entry := dto.CalendarEntry{CalendarItem: item}
		if top, err := s.grid.Position(item.StartTime); err == nil {
			entry.Top = top
		}
		if height, err := s.grid.Extent(item.StartTime, item.EndTime); err == nil {
			entry.Height = height
		}
		byDate[item.Date] = append(byDate[item.Date], entry)
	}

	for _, dateKey := range window.DateKeys() {
		entries := byDate[dateKey]
		if entries == nil {
			entries = []dto.CalendarEntry{}
		}
		week.Days = append(week.Days, dto.CalendarDay{Date: dateKey, Entries: entries})
	}
	return week, nil
}
