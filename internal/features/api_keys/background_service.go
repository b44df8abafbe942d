package api_keys

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"quotaguard/internal/config"
)

// ApiKeySweepService periodically retires active keys whose expiry has
// passed. The sweep is idempotent and at-least-once: overlapping runs are
// harmless because each record transitions at most once.
type ApiKeySweepService struct {
	apiKeyService *ApiKeyService
	logger        *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

const sweepInterval = 1 * time.Minute

func (s *ApiKeySweepService) StartWorkers() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("Starting API key sweep worker",
		slog.Duration("interval", sweepInterval))

	s.wg.Add(1)
	go s.sweepWorker()
}

func (s *ApiKeySweepService) ExecuteAllTasksForTest() error {
	_, err := s.apiKeyService.ProcessExpiredKeys()
	return err
}

func (s *ApiKeySweepService) sweepWorker() {
	defer s.wg.Done()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		if config.IsShouldShutdown() {
			s.logger.Info("API key sweep worker shutting down due to shutdown signal")
			return
		}

		select {
		case <-s.ctx.Done():
			s.logger.Info("API key sweep worker shutting down")
			return

		case <-ticker.C:
			if _, err := s.apiKeyService.ProcessExpiredKeys(); err != nil {
				s.logger.Error("Error during expired key sweep", slog.String("error", err.Error()))
			}
		}
	}
}
