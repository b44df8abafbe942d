package security_events

import (
	"time"

	"quotaguard/internal/storage"

	"github.com/google/uuid"
)

type SecurityEventRepository struct{}

func (r *SecurityEventRepository) Create(event *SecurityEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	return storage.GetDb().Create(event).Error
}

func (r *SecurityEventRepository) GetEvents(
	eventType string,
	limit, offset int,
	beforeDate *time.Time,
) ([]*SecurityEvent, error) {
	var events = make([]*SecurityEvent, 0)

	query := storage.GetDb().Model(&SecurityEvent{})

	if eventType != "" {
		query = query.Where("type = ?", eventType)
	}

	if beforeDate != nil {
		query = query.Where("created_at < ?", *beforeDate)
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error

	return events, err
}

func (r *SecurityEventRepository) CountEvents(eventType string, beforeDate *time.Time) (int64, error) {
	var count int64

	query := storage.GetDb().Model(&SecurityEvent{})

	if eventType != "" {
		query = query.Where("type = ?", eventType)
	}

	if beforeDate != nil {
		query = query.Where("created_at < ?", *beforeDate)
	}

	err := query.Count(&count).Error
	return count, err
}
