package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vistari-app/vistari-api/internal/models"
	appErrors "github.com/vistari-app/vistari-api/pkg/errors"
)

type eventRepository interface {
	ListInRange(ctx context.Context, userID string, from, to time.Time) ([]models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
}

// EventRequest describes a create or update payload for an event.
type EventRequest struct {
	Title     string    `json:"title" validate:"required,max=200"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

// EventService manages standalone calendar events.
type EventService struct {
	repo      eventRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs an EventService.
func NewEventService(repo eventRepository, validate *validator.Validate, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EventService{repo: repo, validator: validate, logger: logger}
}

// ListInRange returns the user's events starting within [from, to].
func (s *EventService) ListInRange(ctx context.Context, userID string, from, to time.Time) ([]models.Event, error) {
	events, err := s.repo.ListInRange(ctx, userID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list events")
	}
	return events, nil
}

// Get returns one event, enforcing ownership.
func (s *EventService) Get(ctx context.Context, userID, id string) (*models.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load event")
	}
	if event.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "event belongs to another user")
	}
	return event, nil
}

// Create validates and persists an event.
func (s *EventService) Create(ctx context.Context, userID string, req EventRequest) (*models.Event, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	event := &models.Event{
		UserID:    userID,
		Title:     req.Title,
		StartTime: req.StartTime.UTC(),
		EndTime:   req.EndTime.UTC(),
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create event")
	}

	s.logger.Info("event created", zap.String("event_id", event.ID), zap.String("user_id", userID))
	return event, nil
}

// Update replaces an event's title and times.
func (s *EventService) Update(ctx context.Context, userID, id string, req EventRequest) (*models.Event, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	event, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	event.Title = req.Title
	event.StartTime = req.StartTime.UTC()
	event.EndTime = req.EndTime.UTC()
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update event")
	}
	return event, nil
}

// Delete removes an event, enforcing ownership.
func (s *EventService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete event")
	}
	return nil
}

func (s *EventService) validateRequest(req EventRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if !req.EndTime.After(req.StartTime) {
		return appErrors.Clone(appErrors.ErrValidation, "event must end after it starts")
	}
	return nil
}
