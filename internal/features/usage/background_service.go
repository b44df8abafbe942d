package usage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"quotaguard/internal/config"
)

// UsageRollupService folds current-period counters into durable daily
// history rows. At-least-once and idempotent: overlapping runs upsert the
// same (merchant, metric, day) rows.
type UsageRollupService struct {
	usageService *UsageService
	logger       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

const rollupInterval = 1 * time.Hour

func (s *UsageRollupService) StartWorkers() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("Starting usage rollup worker",
		slog.Duration("interval", rollupInterval))

	s.wg.Add(1)
	go s.rollupWorker()
}

func (s *UsageRollupService) ExecuteAllTasksForTest() error {
	return s.usageService.RollupCurrentUsage()
}

func (s *UsageRollupService) rollupWorker() {
	defer s.wg.Done()

	ticker := time.NewTicker(rollupInterval)
	defer ticker.Stop()

	for {
		if config.IsShouldShutdown() {
			s.logger.Info("Usage rollup worker shutting down due to shutdown signal")
			return
		}

		select {
		case <-s.ctx.Done():
			s.logger.Info("Usage rollup worker shutting down")
			return

		case <-ticker.C:
			if err := s.usageService.RollupCurrentUsage(); err != nil {
				s.logger.Error("Error during usage rollup", slog.String("error", err.Error()))
			}
		}
	}
}
