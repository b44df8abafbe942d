package security_events

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type SecurityEventService struct {
	eventRepository *SecurityEventRepository
	logger          *slog.Logger
}

// WriteEvent records a security event in the background. Failures are
// logged and never reach the caller: the request outcome must not depend
// on the event store.
func (s *SecurityEventService) WriteEvent(
	eventType SecurityEventType,
	merchantID, apiKeyID *uuid.UUID,
	clientIP, requestID, detail string,
) {
	event := &SecurityEvent{
		Type:       eventType,
		MerchantID: merchantID,
		ApiKeyID:   apiKeyID,
		ClientIP:   clientIP,
		RequestID:  requestID,
		Detail:     detail,
		CreatedAt:  time.Now().UTC(),
	}

	go func() {
		if err := s.eventRepository.Create(event); err != nil {
			s.logger.Error("failed to write security event",
				slog.String("type", string(eventType)),
				slog.String("error", err.Error()))
		}
	}()
}

// WriteEventSync is the blocking variant used by tests.
func (s *SecurityEventService) WriteEventSync(event *SecurityEvent) error {
	return s.eventRepository.Create(event)
}

func (s *SecurityEventService) GetEvents(request *GetSecurityEventsRequest) (*GetSecurityEventsResponse, error) {
	limit := request.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	offset := max(request.Offset, 0)

	events, err := s.eventRepository.GetEvents(request.Type, limit, offset, request.BeforeDate)
	if err != nil {
		return nil, err
	}

	total, err := s.eventRepository.CountEvents(request.Type, request.BeforeDate)
	if err != nil {
		return nil, err
	}

	return &GetSecurityEventsResponse{
		Events: events,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}
