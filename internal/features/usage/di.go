package usage

import (
	"sync"

	"quotaguard/internal/cache"
	counter_utils "quotaguard/internal/util/counter"
	"quotaguard/internal/util/logger"
)

var usageLimitsRepository = &UsageLimitsRepository{}
var usageHistoryRepository = &UsageHistoryRepository{}

var (
	serviceOnce  sync.Once
	usageService *UsageService

	controllerOnce  sync.Once
	usageController *UsageController

	rollupOnce    sync.Once
	rollupService *UsageRollupService
)

// GetUsageService wires the meter to the shared valkey counter store lazily
// so tests can construct services around fake stores instead.
func GetUsageService() *UsageService {
	serviceOnce.Do(func() {
		usageService = NewUsageService(
			counter_utils.NewValkeyStore(cache.GetCache()),
			usageLimitsRepository,
			usageHistoryRepository,
			logger.GetLogger(),
		)
	})

	return usageService
}

func GetUsageController() *UsageController {
	controllerOnce.Do(func() {
		usageController = &UsageController{GetUsageService()}
	})

	return usageController
}

func GetUsageRollupService() *UsageRollupService {
	rollupOnce.Do(func() {
		rollupService = &UsageRollupService{
			usageService: GetUsageService(),
			logger:       logger.GetLogger(),
		}
	})

	return rollupService
}
