package usage

import (
	"time"

	"github.com/google/uuid"
)

// UsageLimits is the single current quota row per merchant, mutated only
// through SetUsageLimits.
type UsageLimits struct {
	MerchantID     uuid.UUID `json:"merchantId"     gorm:"column:merchant_id;primaryKey"`
	Plan           string    `json:"plan"           gorm:"column:plan"`
	QueriesLimit   int64     `json:"queriesLimit"   gorm:"column:queries_limit"`
	DocumentsLimit int64     `json:"documentsLimit" gorm:"column:documents_limit"`
	ApiCallsLimit  int64     `json:"apiCallsLimit"  gorm:"column:api_calls_limit"`
	StorageGbLimit int64     `json:"storageGbLimit" gorm:"column:storage_gb_limit"`
	CreatedAt      time.Time `json:"createdAt"      gorm:"column:created_at"`
	UpdatedAt      time.Time `json:"updatedAt"      gorm:"column:updated_at"`
}

func (UsageLimits) TableName() string {
	return "usage_limits"
}

func (l *UsageLimits) LimitFor(metric MetricType) int64 {
	switch metric {
	case MetricQueries:
		return l.QueriesLimit
	case MetricDocuments:
		return l.DocumentsLimit
	case MetricApiCalls:
		return l.ApiCallsLimit
	case MetricStorageGb:
		return l.StorageGbLimit
	default:
		return 0
	}
}

// UsageHistory is a durable daily rollup written by the aggregation worker.
type UsageHistory struct {
	ID         uuid.UUID  `json:"id"         gorm:"column:id"`
	MerchantID uuid.UUID  `json:"merchantId" gorm:"column:merchant_id"`
	MetricType MetricType `json:"metricType" gorm:"column:metric_type"`
	Date       time.Time  `json:"date"       gorm:"column:date"`
	Value      int64      `json:"value"      gorm:"column:value"`
	CreatedAt  time.Time  `json:"createdAt"  gorm:"column:created_at"`
}

func (UsageHistory) TableName() string {
	return "usage_history"
}
