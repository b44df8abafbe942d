package usage

import (
	"errors"
	"time"

	"quotaguard/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsageLimitsRepository struct{}

func (r *UsageLimitsRepository) GetByMerchantID(merchantID uuid.UUID) (*UsageLimits, error) {
	var limits UsageLimits

	err := storage.GetDb().
		Where("merchant_id = ?", merchantID).
		First(&limits).Error

	if err != nil {
		return nil, err
	}

	return &limits, nil
}

func (r *UsageLimitsRepository) GetAll() ([]*UsageLimits, error) {
	var limits []*UsageLimits

	err := storage.GetDb().Find(&limits).Error
	return limits, err
}

func (r *UsageLimitsRepository) Upsert(limits *UsageLimits) error {
	now := time.Now().UTC()
	if limits.CreatedAt.IsZero() {
		limits.CreatedAt = now
	}
	limits.UpdatedAt = now

	return storage.GetDb().
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "merchant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"plan", "queries_limit", "documents_limit",
				"api_calls_limit", "storage_gb_limit", "updated_at",
			}),
		}).
		Create(limits).Error
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

type UsageHistoryRepository struct{}

// UpsertDaily writes one rollup row per (merchant, metric, day). Re-running
// the aggregation overwrites the value, which makes the job idempotent.
func (r *UsageHistoryRepository) UpsertDaily(
	merchantID uuid.UUID,
	metric MetricType,
	date time.Time,
	value int64,
) error {
	entry := &UsageHistory{
		ID:         uuid.New(),
		MerchantID: merchantID,
		MetricType: metric,
		Date:       date.Truncate(24 * time.Hour),
		Value:      value,
		CreatedAt:  time.Now().UTC(),
	}

	return storage.GetDb().
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "merchant_id"}, {Name: "metric_type"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(entry).Error
}

func (r *UsageHistoryRepository) GetRange(
	merchantID uuid.UUID,
	metric MetricType,
	start, end time.Time,
) ([]*UsageHistory, error) {
	var entries = make([]*UsageHistory, 0)

	err := storage.GetDb().
		Where("merchant_id = ? AND metric_type = ? AND date >= ? AND date <= ?",
			merchantID, metric, start, end).
		Order("date ASC").
		Find(&entries).Error

	return entries, err
}
