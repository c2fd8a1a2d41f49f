package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/vistari-app/vistari-api/pkg/jobs"
)

type maintenanceTokenRepository interface {
	DeleteExpiredRefreshTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

// MaintenanceConfig tunes the housekeeping schedule.
type MaintenanceConfig struct {
	CronSpec     string
	ExportMaxAge time.Duration
}

// MaintenanceService runs periodic housekeeping: purging expired
// refresh tokens and pruning stale export files. The cron trigger only
// enqueues work; the queue workers do the actual deleting so a slow
// run never blocks the scheduler.
type MaintenanceService struct {
	tokens  maintenanceTokenRepository
	exports *ExportService
	logger  *zap.Logger
	config  MaintenanceConfig

	cron  *cron.Cron
	queue *jobs.Queue
}

// NewMaintenanceService constructs a MaintenanceService.
func NewMaintenanceService(tokens maintenanceTokenRepository, exports *ExportService, logger *zap.Logger, config MaintenanceConfig) *MaintenanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CronSpec == "" {
		config.CronSpec = "0 3 * * *"
	}
	if config.ExportMaxAge <= 0 {
		config.ExportMaxAge = 7 * 24 * time.Hour
	}

	s := &MaintenanceService{
		tokens:  tokens,
		exports: exports,
		logger:  logger,
		config:  config,
		cron:    cron.New(),
	}
	s.queue = jobs.NewQueue("maintenance", s.handleJob, jobs.QueueConfig{Workers: 1, Logger: logger})
	return s
}

// Start schedules the housekeeping cron and starts its worker.
func (s *MaintenanceService) Start(ctx context.Context) error {
	s.queue.Start(ctx)

	_, err := s.cron.AddFunc(s.config.CronSpec, func() {
		for _, jobType := range []string{"purge_refresh_tokens", "prune_exports"} {
			if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: jobType}); err != nil {
				s.logger.Warn("failed to enqueue maintenance job", zap.String("type", jobType), zap.Error(err))
			}
		}
	})
	if err != nil {
		return fmt.Errorf("schedule maintenance cron %q: %w", s.config.CronSpec, err)
	}

	s.cron.Start()
	s.logger.Info("maintenance scheduled", zap.String("schedule", s.config.CronSpec))
	return nil
}

// Stop halts the cron scheduler and drains the worker.
func (s *MaintenanceService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.queue.Stop()
}

func (s *MaintenanceService) handleJob(ctx context.Context, job jobs.Job) error {
	switch job.Type {
	case "purge_refresh_tokens":
		removed, err := s.tokens.DeleteExpiredRefreshTokens(ctx, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("purge refresh tokens: %w", err)
		}
		s.logger.Info("expired refresh tokens purged", zap.Int64("removed", removed))
	case "prune_exports":
		if s.exports == nil {
			return nil
		}
		removed, err := s.exports.PruneStoredExports(s.config.ExportMaxAge)
		if err != nil {
			return fmt.Errorf("prune exports: %w", err)
		}
		s.logger.Info("stale exports pruned", zap.Int("removed", removed))
	default:
		s.logger.Warn("unknown maintenance job", zap.String("type", job.Type))
	}
	return nil
}
