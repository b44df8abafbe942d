package request_logs

import (
	"log/slog"
)

type RequestLogService struct {
	requestLogRepository *RequestLogRepository
	logger               *slog.Logger
}

// RecordRequest persists a request log row in the background. The write is
// fire-and-forget: a lost row only skews usage aggregates slightly.
func (s *RequestLogService) RecordRequest(requestLog *RequestLog) {
	go func() {
		if err := s.requestLogRepository.Create(requestLog); err != nil {
			s.logger.Error("failed to record request log",
				slog.String("endpoint", requestLog.Endpoint),
				slog.String("error", err.Error()))
		}
	}()
}
