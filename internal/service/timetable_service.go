package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vistari-app/vistari-api/internal/models"
	appErrors "github.com/vistari-app/vistari-api/pkg/errors"
	"github.com/vistari-app/vistari-api/pkg/timegrid"
)

type timetableRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Timetable, error)
	GetByID(ctx context.Context, id string) (*models.Timetable, error)
	Create(ctx context.Context, timetable *models.Timetable) error
	UpdateSchedule(ctx context.Context, id string, schedule models.Schedule) error
	Delete(ctx context.Context, id string) error
}

// CreateTimetableRequest describes a new timetable payload.
type CreateTimetableRequest struct {
	Name     string          `json:"name" validate:"required,max=120"`
	Schedule models.Schedule `json:"schedule"`
}

// TimetableService manages timetables and enforces the schedule shape
// invariants at every write.
type TimetableService struct {
	repo            timetableRepository
	validator       *validator.Validate
	logger          *zap.Logger
	metrics         *MetricsService
	defaultDuration int
}

// NewTimetableService constructs a TimetableService.
func NewTimetableService(repo timetableRepository, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, defaultDuration int) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if defaultDuration <= 0 {
		defaultDuration = 60
	}
	return &TimetableService{repo: repo, validator: validate, logger: logger, metrics: metrics, defaultDuration: defaultDuration}
}

// List returns the user's timetables.
func (s *TimetableService) List(ctx context.Context, userID string) ([]models.Timetable, error) {
	start := time.Now()
	timetables, err := s.repo.ListByUser(ctx, userID)
	s.metrics.ObserveDBQuery("timetable_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list timetables")
	}
	return timetables, nil
}

// Get returns one timetable, enforcing ownership.
func (s *TimetableService) Get(ctx context.Context, userID, id string) (*models.Timetable, error) {
	timetable, err := s.repo.GetByID(ctx, id)
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

// Create validates and normalizes the submitted schedule and persists
// the timetable. Sessions without an explicit duration get the default
// applied here, once, so every stored session carries a concrete
// duration from then on.
func (s *TimetableService) Create(ctx context.Context, userID string, req CreateTimetableRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}

	normalized, err := s.normalizeSchedule(req.Schedule)
	if err != nil {
		return nil, err
	}

	timetable := &models.Timetable{
		UserID:   userID,
		Name:     req.Name,
		Schedule: normalized,
	}
	start := time.Now()
	err = s.repo.Create(ctx, timetable)
	s.metrics.ObserveDBQuery("timetable_create", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create timetable")
	}

	s.logger.Info("timetable created",
		zap.String("timetable_id", timetable.ID),
		zap.String("user_id", userID),
		zap.Int("sessions", normalized.SessionCount()))
	return timetable, nil
}

// ReplaceSchedule swaps the entire schedule of a timetable, applying
// the same normalization as Create.
func (s *TimetableService) ReplaceSchedule(ctx context.Context, userID, id string, sched models.Schedule) (*models.Timetable, error) {
	timetable, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	normalized, err := s.normalizeSchedule(sched)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = s.repo.UpdateSchedule(ctx, id, normalized)
	s.metrics.ObserveDBQuery("timetable_update_schedule", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update schedule")
	}

	timetable.Schedule = normalized
	return timetable, nil
}

// Delete removes a timetable, enforcing ownership.
func (s *TimetableService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete timetable")
	}
	return nil
}

// normalizeSchedule validates every entry and rebuilds the map without
// empty date lists. Date keys must parse, session times must be valid
// clock values, durations must end up positive.
func (s *TimetableService) normalizeSchedule(sched models.Schedule) (models.Schedule, error) {
	normalized := make(models.Schedule, len(sched))
	for dateKey, sessions := range sched {
		if _, err := time.Parse("2006-01-02", dateKey); err != nil {
			return nil, appErrors.Clone(appErrors.ErrFormat, fmt.Sprintf("invalid date key %q", dateKey))
		}
		if len(sessions) == 0 {
			continue
		}
		day := make([]models.Session, len(sessions))
		for i, sess := range sessions {
			if _, err := timegrid.ParseClock(sess.Time); err != nil {
				return nil, appErrors.Clone(appErrors.ErrFormat, fmt.Sprintf("invalid session time %q on %s", sess.Time, dateKey))
			}
			if sess.Duration == 0 {
				sess.Duration = s.defaultDuration
			}
			if sess.Duration < 0 {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("negative duration on %s", dateKey))
			}
			if sess.Type == "" {
				sess.Type = models.SessionTypeRevision
			}
			day[i] = sess
		}
		normalized[dateKey] = day
	}
	return normalized, nil
}
