package usage

import (
	"testing"
	"time"

	counter_utils "quotaguard/internal/util/counter"
	"quotaguard/internal/util/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// createQuotaTestService uses the real repositories with an isolated counter
// store so tests never share period counters.
func createQuotaTestService() *UsageService {
	return NewUsageService(
		counter_utils.NewMemoryStore(),
		usageLimitsRepository,
		usageHistoryRepository,
		logger.GetLogger(),
	)
}

func Test_SetUsageLimits_StarterPlan_AppliesDefaults(t *testing.T) {
	service := createQuotaTestService()
	merchantID := uuid.New()

	limits, err := service.SetUsageLimits(merchantID, &SetUsageLimitsRequestDTO{Plan: "starter"})

	assert.NoError(t, err)
	assert.Equal(t, int64(1_000), limits.QueriesLimit)
	assert.Equal(t, int64(100), limits.DocumentsLimit)
	assert.Equal(t, int64(10_000), limits.ApiCallsLimit)
	assert.Equal(t, int64(1), limits.StorageGbLimit)

	stored, err := usageLimitsRepository.GetByMerchantID(merchantID)
	assert.NoError(t, err)
	assert.Equal(t, "starter", stored.Plan)
}

func Test_SetUsageLimits_QuotaOverride_ReplacesPlanDefault(t *testing.T) {
	service := createQuotaTestService()
	merchantID := uuid.New()

	limits, err := service.SetUsageLimits(merchantID, &SetUsageLimitsRequestDTO{
		Plan:   "growth",
		Quotas: map[string]int64{string(MetricQueries): 25_000},
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(25_000), limits.QueriesLimit)
	assert.Equal(t, int64(1_000), limits.DocumentsLimit)
}

func Test_SetUsageLimits_CalledTwice_UpdatesInPlace(t *testing.T) {
	service := createQuotaTestService()
	merchantID := uuid.New()

	_, err := service.SetUsageLimits(merchantID, &SetUsageLimitsRequestDTO{Plan: "starter"})
	assert.NoError(t, err)

	_, err = service.SetUsageLimits(merchantID, &SetUsageLimitsRequestDTO{Plan: "enterprise"})
	assert.NoError(t, err)

	stored, err := usageLimitsRepository.GetByMerchantID(merchantID)
	assert.NoError(t, err)
	assert.Equal(t, "enterprise", stored.Plan)
	assert.Equal(t, int64(100_000), stored.QueriesLimit)
}

func Test_CheckLimit_UnderQuota_Allowed(t *testing.T) {
	service := createQuotaTestService()
	merchantID := uuid.New()

	_, err := service.SetUsageLimits(merchantID, &SetUsageLimitsRequestDTO{
		Plan:   "starter",
		Quotas: map[string]int64{string(MetricQueries): 5},
	})
	assert.NoError(t, err)

	service.TrackUsage(merchantID, MetricQueries, 4)

	check, err := service.CheckLimit(merchantID, MetricQueries)

	assert.NoError(t, err)
	assert.True(t, check.Allowed)
	assert.Equal(t, int64(1), check.Remaining)
	assert.Equal(t, int64(5), check.Limit)
}

func Test_CheckLimit_AtQuota_Denied(t *testing.T) {
	service := createQuotaTestService()
	merchantID := uuid.New()

	_, err := service.SetUsageLimits(merchantID, &SetUsageLimitsRequestDTO{
		Plan:   "starter",
		Quotas: map[string]int64{string(MetricQueries): 5},
	})
	assert.NoError(t, err)

	service.TrackUsage(merchantID, MetricQueries, 5)

	check, err := service.CheckLimit(merchantID, MetricQueries)

	assert.NoError(t, err)
	assert.False(t, check.Allowed)
	assert.Equal(t, int64(0), check.Remaining)
}

func Test_CheckLimit_NoLimitsConfigured_ReturnsError(t *testing.T) {
	service := createQuotaTestService()

	_, err := service.CheckLimit(uuid.New(), MetricQueries)

	assert.ErrorIs(t, err, ErrLimitsNotFound)
}

func Test_GetCurrentUsage_ReportsCountsAgainstLimits(t *testing.T) {
	service := createQuotaTestService()
	merchantID := uuid.New()

	_, err := service.SetUsageLimits(merchantID, &SetUsageLimitsRequestDTO{
		Plan:   "starter",
		Quotas: map[string]int64{string(MetricQueries): 200},
	})
	assert.NoError(t, err)

	service.TrackUsage(merchantID, MetricQueries, 50)

	response, err := service.GetCurrentUsage(merchantID)

	assert.NoError(t, err)
	assert.Equal(t, int64(50), response.Queries.Count)
	assert.Equal(t, int64(200), response.Queries.Limit)
	assert.InDelta(t, 25.0, response.Queries.Percentage, 0.001)
	assert.Equal(t, int64(0), response.Documents.Count)
}

func Test_GetUsageForecast_TrackedUsage_ProjectsAtLeastCurrent(t *testing.T) {
	service := createQuotaTestService()
	merchantID := uuid.New()

	_, err := service.SetUsageLimits(merchantID, &SetUsageLimitsRequestDTO{Plan: "starter"})
	assert.NoError(t, err)

	service.TrackUsage(merchantID, MetricQueries, 30)

	forecast, err := service.GetUsageForecast(merchantID, MetricQueries)

	assert.NoError(t, err)
	assert.Equal(t, int64(30), forecast.Current)
	assert.GreaterOrEqual(t, forecast.Projected, float64(30))
	assert.GreaterOrEqual(t, forecast.DaysRemaining, 0)
	assert.Equal(t, int64(1_000), forecast.Limit)
}

func Test_RollupCurrentUsage_PersistsDailyRowsIdempotently(t *testing.T) {
	service := createQuotaTestService()
	merchantID := uuid.New()

	_, err := service.SetUsageLimits(merchantID, &SetUsageLimitsRequestDTO{Plan: "starter"})
	assert.NoError(t, err)

	service.TrackUsage(merchantID, MetricQueries, 12)

	assert.NoError(t, service.RollupCurrentUsage())
	assert.NoError(t, service.RollupCurrentUsage())

	start := time.Now().UTC().AddDate(0, 0, -1)
	end := time.Now().UTC().AddDate(0, 0, 1)

	history, err := service.GetUsageHistory(merchantID, MetricQueries, start, end)

	assert.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Equal(t, int64(12), history[0].Value)
}

func Test_GetUsageHistory_EmptyRange_ReturnsEmptySlice(t *testing.T) {
	service := createQuotaTestService()

	history, err := service.GetUsageHistory(
		uuid.New(),
		MetricQueries,
		time.Now().UTC().AddDate(0, 0, -7),
		time.Now().UTC(),
	)

	assert.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}
