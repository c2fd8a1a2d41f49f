package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vistari-app/vistari-api/internal/models"
	appErrors "github.com/vistari-app/vistari-api/pkg/errors"
	"github.com/vistari-app/vistari-api/pkg/jobs"
)

func newExportServiceForTest(t *testing.T) (*ExportService, string) {
	t.Helper()
	dir := t.TempDir()
	calendar := newCalendarService(&mockCalTimetableRepo{timetable: weekTimetable()}, &mockCalEventRepo{})
	svc := NewExportService(calendar, zap.NewNop(), dir, jobs.QueueConfig{Workers: 1, RetryDelay: 10 * time.Millisecond})
	return svc, dir
}

func TestExportServiceRenderWeekCSV(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	result, err := svc.RenderWeek(context.Background(), "u1", "tt1", "2024-01-03", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "vistari-week-2024-01-01.csv", result.Filename)
	assert.Contains(t, string(result.Data), "Biology")
}

func TestExportServiceRenderWeekPDF(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	result, err := svc.RenderWeek(context.Background(), "u1", "tt1", "2024-01-03", FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, len(result.Data) > 0)
	assert.Equal(t, "%PDF", string(result.Data[:4]))
}

func TestExportServiceRenderWeekICS(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	result, err := svc.RenderWeek(context.Background(), "u1", "tt1", "2024-01-03", FormatICS)
	require.NoError(t, err)
	assert.Equal(t, "text/calendar", result.ContentType)
	assert.Contains(t, string(result.Data), "BEGIN:VEVENT")
}

func TestExportServiceRenderWeekUnsupportedFormat(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	_, err := svc.RenderWeek(context.Background(), "u1", "tt1", "2024-01-03", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceBackgroundRender(t *testing.T) {
	svc, dir := newExportServiceForTest(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.StartWorkers(ctx)
	defer svc.StopWorkers()

	jobID, err := svc.EnqueueWeekExport("u1", "tt1", "2024-01-03", FormatCSV)
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	require.Eventually(t, func() bool {
		entries, err := os.ReadDir(dir)
		return err == nil && len(entries) == 1
	}, 2*time.Second, 20*time.Millisecond)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Contains(t, entries[0].Name(), jobID)
}

func TestExportServiceEnqueueRejectsBadFormat(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	_, err := svc.EnqueueWeekExport("u1", "tt1", "2024-01-03", "docx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServicePruneStoredExports(t *testing.T) {
	svc, dir := newExportServiceForTest(t)

	stale := filepath.Join(dir, "old.csv")
	fresh := filepath.Join(dir, "new.csv")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o644))
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, past, past))

	removed, err := svc.PruneStoredExports(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestExportServiceRenderWeekEmptySchedule(t *testing.T) {
	calendar := newCalendarService(&mockCalTimetableRepo{timetable: &models.Timetable{
		ID: "tt1", UserID: "u1", Schedule: models.Schedule{},
	}}, &mockCalEventRepo{})
	svc := NewExportService(calendar, zap.NewNop(), t.TempDir(), jobs.QueueConfig{})

	result, err := svc.RenderWeek(context.Background(), "u1", "tt1", "2024-01-03", FormatCSV)
	require.NoError(t, err)
	lines := string(result.Data)
	assert.Equal(t, "date,start,end,title,kind,subject,type\n", lines)
}
