package usage

import (
	"time"
)

type MetricUsageDTO struct {
	Count      int64   `json:"count"`
	Limit      int64   `json:"limit"`
	Percentage float64 `json:"percentage"`
}

type CurrentUsageResponseDTO struct {
	Queries   MetricUsageDTO `json:"queries"`
	Documents MetricUsageDTO `json:"documents"`
	ApiCalls  MetricUsageDTO `json:"apiCalls"`
	StorageGb MetricUsageDTO `json:"storageGb"`
}

type LimitCheckDTO struct {
	Allowed   bool  `json:"allowed"`
	Remaining int64 `json:"remaining"`
	Limit     int64 `json:"limit"`
}

type UsageForecastDTO struct {
	Current       int64   `json:"current"`
	Projected     float64 `json:"projected"`
	Limit         int64   `json:"limit"`
	WillExceed    bool    `json:"willExceed"`
	DaysRemaining int     `json:"daysRemaining"`
}

type UsageHistoryEntryDTO struct {
	Date  time.Time `json:"date"`
	Value int64     `json:"value"`
}

type SetUsageLimitsRequestDTO struct {
	Plan   string           `json:"plan" binding:"required"`
	Quotas map[string]int64 `json:"quotas"`
}
