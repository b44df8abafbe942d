package system_healthcheck

import (
	"sync"

	"quotaguard/internal/cache"
	counter_utils "quotaguard/internal/util/counter"
)

var (
	once                  sync.Once
	healthcheckController *HealthcheckController
)

func GetHealthcheckController() *HealthcheckController {
	once.Do(func() {
		healthcheckController = &HealthcheckController{
			&HealthcheckService{counter_utils.NewValkeyStore(cache.GetCache())},
		}
	})

	return healthcheckController
}
