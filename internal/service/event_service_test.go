package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vistari-app/vistari-api/internal/models"
	appErrors "github.com/vistari-app/vistari-api/pkg/errors"
)

type mockEventRepo struct {
	events  map[string]*models.Event
	deleted []string
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[string]*models.Event)}
}

func (m *mockEventRepo) ListInRange(ctx context.Context, userID string, from, to time.Time) ([]models.Event, error) {
	var out []models.Event
	for _, ev := range m.events {
		if ev.UserID == userID && !ev.StartTime.Before(from) && !ev.StartTime.After(to) {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (m *mockEventRepo) GetByID(ctx context.Context, id string) (*models.Event, error) {
	if ev, ok := m.events[id]; ok {
		return ev, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	event.ID = "ev-" + event.Title
	m.events[event.ID] = event
	return nil
}

func (m *mockEventRepo) Update(ctx context.Context, event *models.Event) error {
	m.events[event.ID] = event
	return nil
}

func (m *mockEventRepo) Delete(ctx context.Context, id string) error {
	delete(m.events, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func newEventService(repo *mockEventRepo) *EventService {
	return NewEventService(repo, nil, zap.NewNop())
}

func TestEventServiceCreateStoresUTC(t *testing.T) {
	repo := newMockEventRepo()
	svc := newEventService(repo)

	loc := time.FixedZone("BST", 60*60)
	ev, err := svc.Create(context.Background(), "u1", EventRequest{
		Title:     "Mock exam",
		StartTime: time.Date(2024, time.June, 3, 10, 0, 0, 0, loc),
		EndTime:   time.Date(2024, time.June, 3, 12, 0, 0, 0, loc),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, time.UTC, ev.StartTime.Location())
	assert.Equal(t, 9, ev.StartTime.Hour())
}

func TestEventServiceCreateRejectsInvertedTimes(t *testing.T) {
	svc := newEventService(newMockEventRepo())

	start := time.Date(2024, time.June, 3, 12, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), "u1", EventRequest{
		Title:     "Mock exam",
		StartTime: start,
		EndTime:   start,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEventServiceUpdateEnforcesOwnership(t *testing.T) {
	repo := newMockEventRepo()
	repo.events["ev1"] = &models.Event{
		ID:        "ev1",
		UserID:    "u1",
		Title:     "Mock exam",
		StartTime: time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, time.June, 3, 12, 0, 0, 0, time.UTC),
	}
	svc := newEventService(repo)

	_, err := svc.Update(context.Background(), "u2", "ev1", EventRequest{
		Title:     "Rescheduled",
		StartTime: time.Date(2024, time.June, 4, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, time.June, 4, 12, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "Mock exam", repo.events["ev1"].Title)
}

func TestEventServiceDelete(t *testing.T) {
	repo := newMockEventRepo()
	repo.events["ev1"] = &models.Event{ID: "ev1", UserID: "u1", Title: "Mock exam"}
	svc := newEventService(repo)

	require.NoError(t, svc.Delete(context.Background(), "u1", "ev1"))
	assert.Equal(t, []string{"ev1"}, repo.deleted)

	err := svc.Delete(context.Background(), "u1", "ev1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
