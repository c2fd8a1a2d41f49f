package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vistari-app/vistari-api/internal/dto"
	appErrors "github.com/vistari-app/vistari-api/pkg/errors"
	"github.com/vistari-app/vistari-api/pkg/export"
	"github.com/vistari-app/vistari-api/pkg/jobs"
	"github.com/vistari-app/vistari-api/pkg/timegrid"
)

// Export formats accepted by the week export endpoint.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
	FormatICS = "ics"
)

// ExportResult is a rendered document ready to be served.
type ExportResult struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ExportService renders flattened calendar weeks into downloadable
// documents. Small exports render inline; background renders flow
// through the job queue and land in the storage directory.
type ExportService struct {
	calendar   *CalendarService
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	ics        *export.ICSExporter
	logger     *zap.Logger
	storageDir string
	queue      *jobs.Queue
}

// NewExportService constructs an ExportService. Call StartWorkers to
// enable background exports.
func NewExportService(calendar *CalendarService, logger *zap.Logger, storageDir string, queueCfg jobs.QueueConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportService{
		calendar:   calendar,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		ics:        export.NewICSExporter(),
		logger:     logger,
		storageDir: storageDir,
	}
	queueCfg.Logger = logger
	s.queue = jobs.NewQueue("exports", s.handleJob, queueCfg)
	return s
}

// StartWorkers begins background export processing.
func (s *ExportService) StartWorkers(ctx context.Context) {
	s.queue.Start(ctx)
}

// StopWorkers drains the export workers.
func (s *ExportService) StopWorkers() {
	s.queue.Stop()
}

// RenderWeek produces the requested format for the given week
// synchronously.
func (s *ExportService) RenderWeek(ctx context.Context, userID, timetableID, weekOf, format string) (*ExportResult, error) {
	week, _, err := s.calendar.Week(ctx, userID, timetableID, weekOf)
	if err != nil {
		return nil, err
	}

	payload := buildExportWeek(week)
	base := fmt.Sprintf("vistari-week-%s", week.WeekOf)

	switch format {
	case FormatCSV:
		data, err := s.csv.Render(payload)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Data: data, ContentType: "text/csv", Filename: base + ".csv"}, nil
	case FormatPDF:
		data, err := s.pdf.Render(payload)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Data: data, ContentType: "application/pdf", Filename: base + ".pdf"}, nil
	case FormatICS:
		data, err := s.ics.Render(payload)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render ics")
		}
		return &ExportResult{Data: data, ContentType: "text/calendar", Filename: base + ".ics"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

type weekExportJob struct {
	UserID      string
	TimetableID string
	WeekOf      string
	Format      string
}

// EnqueueWeekExport schedules a background render that is written to
// the storage directory. Returns the job id.
func (s *ExportService) EnqueueWeekExport(userID, timetableID, weekOf, format string) (string, error) {
	switch format {
	case FormatCSV, FormatPDF, FormatICS:
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	jobID := uuid.NewString()
	err := s.queue.Enqueue(jobs.Job{
		ID:      jobID,
		Type:    "week_export",
		Payload: weekExportJob{UserID: userID, TimetableID: timetableID, WeekOf: weekOf, Format: format},
	})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return jobID, nil
}

func (s *ExportService) handleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(weekExportJob)
	if !ok {
		s.logger.Error("unexpected export job payload", zap.String("job_id", job.ID))
		return nil
	}

	result, err := s.RenderWeek(ctx, payload.UserID, payload.TimetableID, payload.WeekOf, payload.Format)
	if err != nil {
		return fmt.Errorf("render export %s: %w", job.ID, err)
	}

	if err := os.MkdirAll(s.storageDir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(s.storageDir, fmt.Sprintf("%s-%s", job.ID, result.Filename))
	if err := os.WriteFile(path, result.Data, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}

	s.logger.Info("export rendered", zap.String("job_id", job.ID), zap.String("path", path))
	return nil
}

// PruneStoredExports deletes rendered files older than maxAge and
// returns how many were removed.
func (s *ExportService) PruneStoredExports(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.storageDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read export dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.storageDir, entry.Name())); err != nil {
				s.logger.Warn("failed to remove stale export", zap.String("file", entry.Name()), zap.Error(err))
				continue
			}
			removed++
		}
	}
	return removed, nil
}

// buildExportWeek converts a week view into the exporter's shape,
// resolving concrete timestamps for calendar-feed formats.
func buildExportWeek(week *dto.CalendarWeek) export.Week {
	out := export.Week{WeekOf: week.WeekOf}
	for _, day := range week.Days {
		date, dateErr := time.Parse("2006-01-02", day.Date)
		for _, entry := range day.Entries {
			item := export.Item{
				Date:    entry.Date,
				Start:   entry.StartTime,
				End:     entry.EndTime,
				Title:   entry.Title,
				Kind:    string(entry.Kind),
				Subject: entry.Subject,
				Type:    entry.Type,
			}
			if dateErr == nil {
				if startMin, err := timegrid.ParseClock(entry.StartTime); err == nil {
					item.StartAt = date.Add(time.Duration(startMin) * time.Minute)
				}
				if endMin, err := timegrid.ParseClock(entry.EndTime); err == nil {
					item.EndAt = date.Add(time.Duration(endMin) * time.Minute)
				}
			}
			out.Items = append(out.Items, item)
		}
	}
	return out
}
