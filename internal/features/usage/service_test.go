package usage

import (
	"errors"
	"sync"
	"testing"
	"time"

	counter_utils "quotaguard/internal/util/counter"
	"quotaguard/internal/util/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func createCounterOnlyService(store counter_utils.Store) *UsageService {
	return NewUsageService(store, nil, nil, logger.GetLogger())
}

func Test_TrackUsage_SingleIncrement_CounterHoldsValue(t *testing.T) {
	store := counter_utils.NewMemoryStore()
	service := createCounterOnlyService(store)
	merchantID := uuid.New()

	service.TrackUsage(merchantID, MetricQueries, 5)

	assert.Equal(t, int64(5), service.GetCurrentCount(merchantID, MetricQueries))
}

func Test_TrackUsage_OrderOfIncrements_DoesNotMatter(t *testing.T) {
	store := counter_utils.NewMemoryStore()
	service := createCounterOnlyService(store)
	first := uuid.New()
	second := uuid.New()

	service.TrackUsage(first, MetricDocuments, 5)
	service.TrackUsage(first, MetricDocuments, 3)

	service.TrackUsage(second, MetricDocuments, 3)
	service.TrackUsage(second, MetricDocuments, 5)

	assert.Equal(t, int64(8), service.GetCurrentCount(first, MetricDocuments))
	assert.Equal(t, int64(8), service.GetCurrentCount(second, MetricDocuments))
}

func Test_TrackUsage_ConcurrentIncrements_NoSampleLost(t *testing.T) {
	store := counter_utils.NewMemoryStore()
	service := createCounterOnlyService(store)
	merchantID := uuid.New()
	workers := 100

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			service.TrackUsage(merchantID, MetricApiCalls, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(workers), service.GetCurrentCount(merchantID, MetricApiCalls))
}

func Test_TrackUsage_UnknownMetric_IsIgnored(t *testing.T) {
	store := counter_utils.NewMemoryStore()
	service := createCounterOnlyService(store)
	merchantID := uuid.New()

	service.TrackUsage(merchantID, MetricType("teleports"), 7)

	key := usageKey(merchantID, MetricType("teleports"), currentPeriod(time.Now()))
	count, err := store.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func Test_TrackUsage_DifferentMetrics_IsolatedCounters(t *testing.T) {
	store := counter_utils.NewMemoryStore()
	service := createCounterOnlyService(store)
	merchantID := uuid.New()

	service.TrackUsage(merchantID, MetricQueries, 4)
	service.TrackUsage(merchantID, MetricDocuments, 9)

	assert.Equal(t, int64(4), service.GetCurrentCount(merchantID, MetricQueries))
	assert.Equal(t, int64(9), service.GetCurrentCount(merchantID, MetricDocuments))
	assert.Equal(t, int64(0), service.GetCurrentCount(merchantID, MetricStorageGb))
}

type brokenStore struct{}

var errBroken = errors.New("io timeout")

func (b *brokenStore) Increment(string, int64) (int64, error) { return 0, errBroken }
func (b *brokenStore) Expire(string, time.Duration) error     { return errBroken }
func (b *brokenStore) Get(string) (int64, error)              { return 0, errBroken }
func (b *brokenStore) Delete(string) error                    { return errBroken }
func (b *brokenStore) Ping() error                            { return errBroken }

func Test_GetCurrentCount_StoreUnavailable_ReturnsZero(t *testing.T) {
	service := createCounterOnlyService(&brokenStore{})

	assert.Equal(t, int64(0), service.GetCurrentCount(uuid.New(), MetricQueries))
}

func Test_TrackUsage_StoreUnavailable_DoesNotPanic(t *testing.T) {
	service := createCounterOnlyService(&brokenStore{})

	assert.NotPanics(t, func() {
		service.TrackUsage(uuid.New(), MetricQueries, 1)
	})
}

func Test_ForecastProjection_MidMonth_ExtrapolatesRunRate(t *testing.T) {
	// 50 used over 10 days projects 5/day over the remaining 20 days.
	projected := forecastProjection(50, 10, 20)

	assert.InDelta(t, 150.0, projected, 0.001)
}

func Test_ForecastProjection_ZeroDaysElapsed_ReturnsCurrent(t *testing.T) {
	projected := forecastProjection(42, 0, 30)

	assert.InDelta(t, 42.0, projected, 0.001)
}

func Test_ForecastProjection_LastDayOfMonth_NoFurtherGrowth(t *testing.T) {
	projected := forecastProjection(300, 30, 0)

	assert.InDelta(t, 300.0, projected, 0.001)
}

func Test_DaysIn_KnownMonths_ReturnsCalendarLength(t *testing.T) {
	assert.Equal(t, 31, daysIn(time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 28, daysIn(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 29, daysIn(time.Date(2028, time.February, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 30, daysIn(time.Date(2026, time.September, 30, 0, 0, 0, 0, time.UTC)))
}

func Test_UsageKey_EncodesMerchantMetricAndPeriod(t *testing.T) {
	merchantID := uuid.MustParse("a2f6d8a0-1b2c-4d3e-8f90-123456789abc")

	key := usageKey(merchantID, MetricQueries, "2026-09")

	assert.Equal(t, "usage:a2f6d8a0-1b2c-4d3e-8f90-123456789abc:queries:2026-09", key)
}

func Test_CurrentPeriod_FormatsAsUTCYearMonth(t *testing.T) {
	// 23:30 in UTC-5 on Jan 31 is already February in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	edge := time.Date(2026, time.January, 31, 23, 30, 0, 0, loc)

	assert.Equal(t, "2026-02", currentPeriod(edge))
}

func Test_SetUsageLimits_UnknownPlan_ReturnsError(t *testing.T) {
	service := createCounterOnlyService(counter_utils.NewMemoryStore())

	_, err := service.SetUsageLimits(uuid.New(), &SetUsageLimitsRequestDTO{Plan: "platinum"})

	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func Test_SetUsageLimits_UnknownMetricOverride_ReturnsError(t *testing.T) {
	service := createCounterOnlyService(counter_utils.NewMemoryStore())

	_, err := service.SetUsageLimits(uuid.New(), &SetUsageLimitsRequestDTO{
		Plan:   "starter",
		Quotas: map[string]int64{"teleports": 100},
	})

	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func Test_SetUsageLimits_NegativeQuotaOverride_ReturnsError(t *testing.T) {
	service := createCounterOnlyService(counter_utils.NewMemoryStore())

	_, err := service.SetUsageLimits(uuid.New(), &SetUsageLimitsRequestDTO{
		Plan:   "starter",
		Quotas: map[string]int64{string(MetricQueries): -1},
	})

	assert.ErrorIs(t, err, ErrNegativeQuota)
}

func Test_CheckLimit_UnknownMetric_ReturnsError(t *testing.T) {
	service := createCounterOnlyService(counter_utils.NewMemoryStore())

	_, err := service.CheckLimit(uuid.New(), MetricType("teleports"))

	assert.ErrorIs(t, err, ErrUnknownMetric)
}
