package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vistari-app/vistari-api/internal/models"
	appErrors "github.com/vistari-app/vistari-api/pkg/errors"
)

type mockTimetableRepo struct {
	timetables map[string]*models.Timetable
	deleted    []string
}

func newMockTimetableRepo() *mockTimetableRepo {
	return &mockTimetableRepo{timetables: make(map[string]*models.Timetable)}
}

func (m *mockTimetableRepo) ListByUser(ctx context.Context, userID string) ([]models.Timetable, error) {
	var out []models.Timetable
	for _, tt := range m.timetables {
		if tt.UserID == userID {
			out = append(out, *tt)
		}
	}
	return out, nil
}

func (m *mockTimetableRepo) GetByID(ctx context.Context, id string) (*models.Timetable, error) {
	if tt, ok := m.timetables[id]; ok {
		return tt, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTimetableRepo) Create(ctx context.Context, timetable *models.Timetable) error {
	timetable.ID = "tt-" + timetable.Name
	m.timetables[timetable.ID] = timetable
	return nil
}

func (m *mockTimetableRepo) UpdateSchedule(ctx context.Context, id string, schedule models.Schedule) error {
	tt, ok := m.timetables[id]
	if !ok {
		return sql.ErrNoRows
	}
	tt.Schedule = schedule
	return nil
}

func (m *mockTimetableRepo) Delete(ctx context.Context, id string) error {
	delete(m.timetables, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func newTimetableService(repo *mockTimetableRepo) *TimetableService {
	return NewTimetableService(repo, nil, zap.NewNop(), nil, 0)
}

func TestTimetableServiceCreateAppliesDefaults(t *testing.T) {
	repo := newMockTimetableRepo()
	svc := newTimetableService(repo)

	tt, err := svc.Create(context.Background(), "u1", CreateTimetableRequest{
		Name: "GCSE revision",
		Schedule: models.Schedule{
			"2024-01-03": {
				{Time: "09:00", Subject: "Biology", Topic: "Cells"},
				{Time: "11:00", Subject: "History", Topic: "Cold War", Duration: 45, Type: models.SessionTypeHomework},
			},
			"2024-01-04": {},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tt.ID)

	day := tt.Schedule["2024-01-03"]
	require.Len(t, day, 2)
	assert.Equal(t, 60, day[0].Duration)
	assert.Equal(t, models.SessionTypeRevision, day[0].Type)
	assert.Equal(t, 45, day[1].Duration)
	assert.Equal(t, models.SessionTypeHomework, day[1].Type)

	_, hasEmptyDay := tt.Schedule["2024-01-04"]
	assert.False(t, hasEmptyDay)
}

func TestTimetableServiceCreateRequiresName(t *testing.T) {
	svc := newTimetableService(newMockTimetableRepo())

	_, err := svc.Create(context.Background(), "u1", CreateTimetableRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceCreateRejectsBadDateKey(t *testing.T) {
	svc := newTimetableService(newMockTimetableRepo())

	_, err := svc.Create(context.Background(), "u1", CreateTimetableRequest{
		Name:     "GCSE revision",
		Schedule: models.Schedule{"03/01/2024": {{Time: "09:00", Subject: "Biology"}}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFormat.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceCreateRejectsBadTime(t *testing.T) {
	svc := newTimetableService(newMockTimetableRepo())

	_, err := svc.Create(context.Background(), "u1", CreateTimetableRequest{
		Name:     "GCSE revision",
		Schedule: models.Schedule{"2024-01-03": {{Time: "9am", Subject: "Biology"}}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFormat.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceCreateRejectsNegativeDuration(t *testing.T) {
	svc := newTimetableService(newMockTimetableRepo())

	_, err := svc.Create(context.Background(), "u1", CreateTimetableRequest{
		Name:     "GCSE revision",
		Schedule: models.Schedule{"2024-01-03": {{Time: "09:00", Subject: "Biology", Duration: -30}}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGetEnforcesOwnership(t *testing.T) {
	repo := newMockTimetableRepo()
	repo.timetables["tt1"] = &models.Timetable{ID: "tt1", UserID: "u1", Name: "mine"}
	svc := newTimetableService(repo)

	_, err := svc.Get(context.Background(), "u2", "tt1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.Get(context.Background(), "u1", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceReplaceSchedule(t *testing.T) {
	repo := newMockTimetableRepo()
	repo.timetables["tt1"] = &models.Timetable{
		ID: "tt1", UserID: "u1", Name: "mine",
		Schedule: models.Schedule{"2024-01-03": {{Time: "09:00", Subject: "Biology", Duration: 60}}},
	}
	svc := newTimetableService(repo)

	updated, err := svc.ReplaceSchedule(context.Background(), "u1", "tt1", models.Schedule{
		"2024-01-04": {{Time: "10:00", Subject: "Maths", Topic: "Algebra"}},
	})
	require.NoError(t, err)
	_, hadOld := updated.Schedule["2024-01-03"]
	assert.False(t, hadOld)
	require.Len(t, updated.Schedule["2024-01-04"], 1)
	assert.Equal(t, 60, updated.Schedule["2024-01-04"][0].Duration)
}

func TestTimetableServiceDelete(t *testing.T) {
	repo := newMockTimetableRepo()
	repo.timetables["tt1"] = &models.Timetable{ID: "tt1", UserID: "u1", Name: "mine"}
	svc := newTimetableService(repo)

	require.NoError(t, svc.Delete(context.Background(), "u1", "tt1"))
	assert.Equal(t, []string{"tt1"}, repo.deleted)

	err := svc.Delete(context.Background(), "u1", "tt1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
