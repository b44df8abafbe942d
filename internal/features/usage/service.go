package usage

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	counter_utils "quotaguard/internal/util/counter"

	"github.com/google/uuid"
)

type UsageService struct {
	counterStore      counter_utils.Store
	limitsRepository  *UsageLimitsRepository
	historyRepository *UsageHistoryRepository
	logger            *slog.Logger
}

const (
	usageKeyPrefix = "usage:"

	// A period counter outlives its month slightly so the rollup job can
	// still read it after the boundary.
	usageCounterTTL = 40 * 24 * time.Hour
)

var (
	ErrLimitsNotFound = errors.New("usage limits not configured for merchant")
	ErrUnknownPlan    = errors.New("unknown plan")
	ErrUnknownMetric  = errors.New("unknown metric type")
	ErrNegativeQuota  = errors.New("quota must not be negative")
)

func NewUsageService(
	counterStore counter_utils.Store,
	limitsRepository *UsageLimitsRepository,
	historyRepository *UsageHistoryRepository,
	logger *slog.Logger,
) *UsageService {
	return &UsageService{
		counterStore:      counterStore,
		limitsRepository:  limitsRepository,
		historyRepository: historyRepository,
		logger:            logger,
	}
}

func usageKey(merchantID uuid.UUID, metric MetricType, period string) string {
	return fmt.Sprintf("%s%s:%s:%s", usageKeyPrefix, merchantID, metric, period)
}

func currentPeriod(now time.Time) string {
	return now.UTC().Format("2006-01")
}

// TrackUsage atomically adds value to the merchant's current-period counter.
// Store failures are logged and swallowed: undercounted usage is acceptable,
// a blocked request is not.
func (s *UsageService) TrackUsage(merchantID uuid.UUID, metric MetricType, value int64) {
	if !IsValidMetricType(metric) {
		s.logger.Warn("ignoring usage for unknown metric", slog.String("metric", string(metric)))
		return
	}

	key := usageKey(merchantID, metric, currentPeriod(time.Now()))

	newValue, err := s.counterStore.Increment(key, value)
	if err != nil {
		s.logger.Error("failed to track usage, dropping sample",
			slog.String("merchantId", merchantID.String()),
			slog.String("metric", string(metric)),
			slog.String("error", err.Error()))
		return
	}

	if newValue == value {
		if err := s.counterStore.Expire(key, usageCounterTTL); err != nil {
			s.logger.Warn("failed to set usage counter expiry",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}
}

func (s *UsageService) GetCurrentCount(merchantID uuid.UUID, metric MetricType) int64 {
	count, err := s.counterStore.Get(usageKey(merchantID, metric, currentPeriod(time.Now())))
	if err != nil {
		s.logger.Error("failed to read usage counter, assuming zero",
			slog.String("merchantId", merchantID.String()),
			slog.String("metric", string(metric)),
			slog.String("error", err.Error()))
		return 0
	}

	return count
}

func (s *UsageService) GetCurrentUsage(merchantID uuid.UUID) (*CurrentUsageResponseDTO, error) {
	limits, err := s.limitsRepository.GetByMerchantID(merchantID)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrLimitsNotFound
		}
		return nil, fmt.Errorf("failed to load usage limits: %w", err)
	}

	response := &CurrentUsageResponseDTO{}
	for _, metric := range AllMetricTypes {
		entry := s.metricUsage(merchantID, metric, limits)

		switch metric {
		case MetricQueries:
			response.Queries = entry
		case MetricDocuments:
			response.Documents = entry
		case MetricApiCalls:
			response.ApiCalls = entry
		case MetricStorageGb:
			response.StorageGb = entry
		}
	}

	return response, nil
}

func (s *UsageService) metricUsage(merchantID uuid.UUID, metric MetricType, limits *UsageLimits) MetricUsageDTO {
	count := s.GetCurrentCount(merchantID, metric)
	limit := limits.LimitFor(metric)

	var percentage float64
	if limit > 0 {
		percentage = float64(count) / float64(limit) * 100
	}

	return MetricUsageDTO{
		Count:      count,
		Limit:      limit,
		Percentage: percentage,
	}
}

// CheckLimit gates an expensive operation against the merchant's quota.
// Invariants: allowed implies remaining > 0; not allowed implies remaining == 0.
func (s *UsageService) CheckLimit(merchantID uuid.UUID, metric MetricType) (*LimitCheckDTO, error) {
	if !IsValidMetricType(metric) {
		return nil, ErrUnknownMetric
	}

	limits, err := s.limitsRepository.GetByMerchantID(merchantID)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrLimitsNotFound
		}
		return nil, fmt.Errorf("failed to load usage limits: %w", err)
	}

	count := s.GetCurrentCount(merchantID, metric)
	limit := limits.LimitFor(metric)

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return &LimitCheckDTO{
		Allowed:   count < limit,
		Remaining: remaining,
		Limit:     limit,
	}, nil
}

// GetUsageForecast linearly extrapolates the current period's run rate
// across the remainder of the calendar month.
func (s *UsageService) GetUsageForecast(merchantID uuid.UUID, metric MetricType) (*UsageForecastDTO, error) {
	if !IsValidMetricType(metric) {
		return nil, ErrUnknownMetric
	}

	limits, err := s.limitsRepository.GetByMerchantID(merchantID)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrLimitsNotFound
		}
		return nil, fmt.Errorf("failed to load usage limits: %w", err)
	}

	current := s.GetCurrentCount(merchantID, metric)
	limit := limits.LimitFor(metric)

	now := time.Now().UTC()
	daysElapsed := now.Day()
	daysInMonth := daysIn(now)
	daysRemaining := daysInMonth - daysElapsed

	projected := forecastProjection(current, daysElapsed, daysRemaining)

	return &UsageForecastDTO{
		Current:       current,
		Projected:     projected,
		Limit:         limit,
		WillExceed:    projected > float64(limit),
		DaysRemaining: daysRemaining,
	}, nil
}

func forecastProjection(current int64, daysElapsed, daysRemaining int) float64 {
	if daysElapsed <= 0 {
		return float64(current)
	}

	runRate := float64(current) / float64(daysElapsed)
	return float64(current) + runRate*float64(daysRemaining)
}

func daysIn(t time.Time) int {
	firstOfNextMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNextMonth.AddDate(0, 0, -1).Day()
}

// GetUsageHistory reads durable daily rollups; an empty range yields an
// empty slice, never an error.
func (s *UsageService) GetUsageHistory(
	merchantID uuid.UUID,
	metric MetricType,
	start, end time.Time,
) ([]UsageHistoryEntryDTO, error) {
	if !IsValidMetricType(metric) {
		return nil, ErrUnknownMetric
	}

	entries, err := s.historyRepository.GetRange(merchantID, metric, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage history: %w", err)
	}

	history := make([]UsageHistoryEntryDTO, 0, len(entries))
	for _, entry := range entries {
		history = append(history, UsageHistoryEntryDTO{
			Date:  entry.Date,
			Value: entry.Value,
		})
	}

	return history, nil
}

// SetUsageLimits upserts the merchant's quota row. Authorization is the
// caller's responsibility; the admin route group enforces it.
func (s *UsageService) SetUsageLimits(
	merchantID uuid.UUID,
	request *SetUsageLimitsRequestDTO,
) (*UsageLimits, error) {
	if !IsValidPlan(request.Plan) {
		return nil, ErrUnknownPlan
	}

	quotas := planQuotas[request.Plan]

	limits := &UsageLimits{
		MerchantID:     merchantID,
		Plan:           request.Plan,
		QueriesLimit:   quotas[MetricQueries],
		DocumentsLimit: quotas[MetricDocuments],
		ApiCallsLimit:  quotas[MetricApiCalls],
		StorageGbLimit: quotas[MetricStorageGb],
	}

	for rawMetric, quota := range request.Quotas {
		metric := MetricType(rawMetric)
		if !IsValidMetricType(metric) {
			return nil, ErrUnknownMetric
		}
		if quota < 0 {
			return nil, ErrNegativeQuota
		}

		switch metric {
		case MetricQueries:
			limits.QueriesLimit = quota
		case MetricDocuments:
			limits.DocumentsLimit = quota
		case MetricApiCalls:
			limits.ApiCallsLimit = quota
		case MetricStorageGb:
			limits.StorageGbLimit = quota
		}
	}

	if err := s.limitsRepository.Upsert(limits); err != nil {
		return nil, fmt.Errorf("failed to save usage limits: %w", err)
	}

	return limits, nil
}

// RollupCurrentUsage folds every merchant's current-period counters into
// today's durable history rows. Idempotent; safe on overlapping schedules.
func (s *UsageService) RollupCurrentUsage() error {
	allLimits, err := s.limitsRepository.GetAll()
	if err != nil {
		return fmt.Errorf("failed to list merchants with limits: %w", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)

	var failures int
	for _, limits := range allLimits {
		for _, metric := range AllMetricTypes {
			value := s.GetCurrentCount(limits.MerchantID, metric)

			if err := s.historyRepository.UpsertDaily(limits.MerchantID, metric, today, value); err != nil {
				failures++
				s.logger.Error("failed to roll up usage",
					slog.String("merchantId", limits.MerchantID.String()),
					slog.String("metric", string(metric)),
					slog.String("error", err.Error()))
			}
		}
	}

	if failures > 0 {
		return fmt.Errorf("usage rollup finished with %d failures", failures)
	}

	return nil
}
