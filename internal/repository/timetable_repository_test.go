package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistari-app/vistari-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestTimetableRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	scheduleJSON := []byte(`{"2024-01-03":[{"time":"09:00","subject":"Biology","topic":"Cells","duration":60,"type":"revision"}]}`)
	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "schedule", "created_at", "updated_at"}).
		AddRow("tt-1", "user-1", "Spring plan", scheduleJSON, time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, user_id, name, schedule").
		WithArgs("tt-1").
		WillReturnRows(rows)

	timetable, err := repo.GetByID(context.Background(), "tt-1")
	require.NoError(t, err)
	require.Len(t, timetable.Schedule["2024-01-03"], 1)
	assert.Equal(t, "Biology", timetable.Schedule["2024-01-03"][0].Subject)
	assert.Equal(t, 60, timetable.Schedule["2024-01-03"][0].Duration)
}

func TestTimetableRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectQuery("SELECT id, user_id, name, schedule").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTimetableRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectExec("INSERT INTO timetables").
		WithArgs(sqlmock.AnyArg(), "user-1", "Spring plan", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	timetable := &models.Timetable{
		UserID: "user-1",
		Name:   "Spring plan",
		Schedule: models.Schedule{
			"2024-01-03": {{Time: "09:00", Subject: "Biology", Duration: 60, Type: models.SessionTypeRevision}},
		},
	}
	require.NoError(t, repo.Create(context.Background(), timetable))
	assert.NotEmpty(t, timetable.ID)
}

func TestTimetableRepositoryUpdateSchedule(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectExec("UPDATE timetables SET schedule").
		WithArgs("tt-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	schedule := models.Schedule{
		"2024-01-04": {{Time: "10:00", Subject: "History", Duration: 45, Type: models.SessionTypeRevision}},
	}
	require.NoError(t, repo.UpdateSchedule(context.Background(), "tt-1", schedule))
}

func TestTimetableRepositoryUpdateScheduleMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectExec("UPDATE timetables SET schedule").
		WithArgs("gone", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateSchedule(context.Background(), "gone", models.Schedule{})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
