package rate_limit

import (
	"quotaguard/internal/cache"
	counter_utils "quotaguard/internal/util/counter"
	"quotaguard/internal/util/logger"
	"sync"
)

var (
	once   sync.Once
	engine *Engine
)

// GetEngine wires the engine to the shared valkey-backed counter store.
// Construction is lazy so tests can build engines around fake stores
// without touching valkey.
func GetEngine() *Engine {
	once.Do(func() {
		engine = NewEngine(counter_utils.NewValkeyStore(cache.GetCache()), logger.GetLogger())
	})

	return engine
}
