package request_logs

import (
	"time"

	"quotaguard/internal/storage"

	"github.com/google/uuid"
)

type RequestLogRepository struct{}

func (r *RequestLogRepository) Create(requestLog *RequestLog) error {
	if requestLog.ID == uuid.Nil {
		requestLog.ID = uuid.New()
	}

	if requestLog.CreatedAt.IsZero() {
		requestLog.CreatedAt = time.Now().UTC()
	}

	return storage.GetDb().Create(requestLog).Error
}

type endpointCount struct {
	Endpoint string `gorm:"column:endpoint"`
	Count    int64  `gorm:"column:count"`
}

type statusCount struct {
	StatusCode int   `gorm:"column:status_code"`
	Count      int64 `gorm:"column:count"`
}

func (r *RequestLogRepository) CountByKey(apiKeyID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64

	err := storage.GetDb().
		Model(&RequestLog{}).
		Where("api_key_id = ? AND created_at >= ? AND created_at <= ?", apiKeyID, start, end).
		Count(&count).Error

	return count, err
}

func (r *RequestLogRepository) CountByKeyPerEndpoint(
	apiKeyID uuid.UUID,
	start, end time.Time,
) (map[string]int64, error) {
	var rows []endpointCount

	err := storage.GetDb().
		Model(&RequestLog{}).
		Select("endpoint, COUNT(*) as count").
		Where("api_key_id = ? AND created_at >= ? AND created_at <= ?", apiKeyID, start, end).
		Group("endpoint").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Endpoint] = row.Count
	}

	return counts, nil
}

func (r *RequestLogRepository) CountByKeyPerStatus(
	apiKeyID uuid.UUID,
	start, end time.Time,
) (map[int]int64, error) {
	var rows []statusCount

	err := storage.GetDb().
		Model(&RequestLog{}).
		Select("status_code, COUNT(*) as count").
		Where("api_key_id = ? AND created_at >= ? AND created_at <= ?", apiKeyID, start, end).
		Group("status_code").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.StatusCode] = row.Count
	}

	return counts, nil
}

func (r *RequestLogRepository) AvgResponseTimeByKey(apiKeyID uuid.UUID, start, end time.Time) (float64, error) {
	var avg *float64

	err := storage.GetDb().
		Model(&RequestLog{}).
		Select("AVG(response_time_ms)").
		Where("api_key_id = ? AND created_at >= ? AND created_at <= ?", apiKeyID, start, end).
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}

	return *avg, nil
}
