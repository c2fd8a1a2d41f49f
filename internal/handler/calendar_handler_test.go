package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistari-app/vistari-api/internal/dto"
	"github.com/vistari-app/vistari-api/internal/middleware"
	"github.com/vistari-app/vistari-api/internal/models"
	"github.com/vistari-app/vistari-api/internal/service"
	appErrors "github.com/vistari-app/vistari-api/pkg/errors"
)

type fakeCalendarSrv struct {
	week     *dto.CalendarWeek
	weekHit  bool
	weekErr  error
	moveErr  error
	lastMove dto.MoveRequest
}

func (f *fakeCalendarSrv) Week(context.Context, string, string, string) (*dto.CalendarWeek, bool, error) {
	return f.week, f.weekHit, f.weekErr
}

func (f *fakeCalendarSrv) MoveItem(_ context.Context, _ string, req dto.MoveRequest) (*dto.CalendarWeek, error) {
	f.lastMove = req
	return f.week, f.moveErr
}

type fakeExportSrv struct {
	result      *service.ExportResult
	renderErr   error
	jobID       string
	enqueueErr  error
	lastFormat  string
	lastEnqueue string
}

func (f *fakeExportSrv) RenderWeek(_ context.Context, _, _, _, format string) (*service.ExportResult, error) {
	f.lastFormat = format
	return f.result, f.renderErr
}

func (f *fakeExportSrv) EnqueueWeekExport(_, _, _, format string) (string, error) {
	f.lastEnqueue = format
	return f.jobID, f.enqueueErr
}

func authedContext(t *testing.T, rec *httptest.ResponseRecorder, req *http.Request) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1"})
	return c
}

func TestCalendarHandlerWeekRequiresTimetable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCalendarHandler(&fakeCalendarSrv{}, &fakeExportSrv{})

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, httptest.NewRequest(http.MethodGet, "/calendar/week", nil))

	handler.Week(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalendarHandlerWeekSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCalendarHandler(&fakeCalendarSrv{
		week:    &dto.CalendarWeek{WeekOf: "2024-01-01"},
		weekHit: true,
	}, &fakeExportSrv{})

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, httptest.NewRequest(http.MethodGet, "/calendar/week?timetable_id=tt1", nil))

	handler.Week(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data map[string]interface{} `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, "2024-01-01", envelope.Data["week_of"])
}

func TestCalendarHandlerWeekUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCalendarHandler(&fakeCalendarSrv{}, &fakeExportSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/calendar/week?timetable_id=tt1", nil)

	handler.Week(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCalendarHandlerMove(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeCalendarSrv{week: &dto.CalendarWeek{WeekOf: "2024-01-01"}}
	handler := NewCalendarHandler(srv, &fakeExportSrv{})

	body, _ := json.Marshal(dto.MoveRequest{
		TimetableID: "tt1",
		Source:      models.SourceRef{Kind: models.ItemKindSession, DateKey: "2024-01-03", Index: 0},
		TargetDate:  "2024-01-05",
	})
	req := httptest.NewRequest(http.MethodPost, "/calendar/move", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := authedContext(t, rec, req)

	handler.Move(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tt1", srv.lastMove.TimetableID)
	assert.Equal(t, "2024-01-05", srv.lastMove.TargetDate)
}

func TestCalendarHandlerMoveConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCalendarHandler(&fakeCalendarSrv{moveErr: appErrors.ErrConflict}, &fakeExportSrv{})

	body, _ := json.Marshal(dto.MoveRequest{
		TimetableID: "tt1",
		Source:      models.SourceRef{Kind: models.ItemKindSession, DateKey: "2024-01-03", Index: 0},
		TargetDate:  "2024-01-05",
	})
	req := httptest.NewRequest(http.MethodPost, "/calendar/move", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := authedContext(t, rec, req)

	handler.Move(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCalendarHandlerExportWeek(t *testing.T) {
	gin.SetMode(gin.TestMode)
	exports := &fakeExportSrv{result: &service.ExportResult{
		Data:        []byte("date,start,end\n"),
		ContentType: "text/csv",
		Filename:    "vistari-week-2024-01-01.csv",
	}}
	handler := NewCalendarHandler(&fakeCalendarSrv{}, exports)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, httptest.NewRequest(http.MethodGet, "/calendar/week/export?timetable_id=tt1&format=csv", nil))

	handler.ExportWeek(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", exports.lastFormat)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "vistari-week-2024-01-01.csv")
}

func TestCalendarHandlerExportWeekAsync(t *testing.T) {
	gin.SetMode(gin.TestMode)
	exports := &fakeExportSrv{jobID: "job-1"}
	handler := NewCalendarHandler(&fakeCalendarSrv{}, exports)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, httptest.NewRequest(http.MethodGet, "/calendar/week/export?timetable_id=tt1&format=pdf&async=true", nil))

	handler.ExportWeek(c)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "pdf", exports.lastEnqueue)
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "job-1", envelope.Data["job_id"])
}
