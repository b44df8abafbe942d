package rate_limit

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	counter_utils "quotaguard/internal/util/counter"
	"quotaguard/internal/util/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func createTestEngine() *Engine {
	return NewEngine(counter_utils.NewMemoryStore(), logger.GetLogger())
}

func Test_Check_WithinLimit_AllowsRequest(t *testing.T) {
	engine := createTestEngine()
	identifier := uuid.New().String()

	result := engine.Check(ScopeIP, identifier, 3, 60)

	assert.True(t, result.Allowed)
	assert.Equal(t, 2, result.Remaining)
	assert.Equal(t, 60, result.ResetAfterSec)
}

func Test_Check_ExceedsLimit_DeniesFourthRequest(t *testing.T) {
	engine := createTestEngine()
	identifier := uuid.New().String()

	for i := 0; i < 3; i++ {
		result := engine.Check(ScopeIP, identifier, 3, 60)
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}

	result := engine.Check(ScopeIP, identifier, 3, 60)

	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
	assert.Equal(t, 60, result.ResetAfterSec)
}

func Test_Check_AllowedAndRemaining_AreConsistent(t *testing.T) {
	engine := createTestEngine()
	identifier := uuid.New().String()

	for i := 0; i < 10; i++ {
		result := engine.Check(ScopeMerchant, identifier, 5, 60)

		if result.Allowed {
			// The last admitted request reports remaining == 0 only when it
			// consumed the final slot
			assert.GreaterOrEqual(t, result.Remaining, 0)
		} else {
			assert.Equal(t, 0, result.Remaining)
		}
	}
}

func Test_Check_DifferentIdentifiers_IsolatedBudgets(t *testing.T) {
	engine := createTestEngine()
	first := uuid.New().String()
	second := uuid.New().String()

	result := engine.Check(ScopeIP, first, 1, 60)
	assert.True(t, result.Allowed)

	result = engine.Check(ScopeIP, first, 1, 60)
	assert.False(t, result.Allowed)

	result = engine.Check(ScopeIP, second, 1, 60)
	assert.True(t, result.Allowed)
}

func Test_Check_DifferentScopes_IsolatedBudgets(t *testing.T) {
	engine := createTestEngine()
	identifier := uuid.New().String()

	result := engine.Check(ScopeIP, identifier, 1, 60)
	assert.True(t, result.Allowed)

	// Same identifier under another scope draws from a separate budget
	result = engine.Check(ScopeApiKey, identifier, 1, 60)
	assert.True(t, result.Allowed)
}

func Test_Check_ConcurrentRequests_CountExactly(t *testing.T) {
	engine := createTestEngine()
	identifier := uuid.New().String()
	limit := 50
	total := 80

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := engine.Check(ScopeMerchant, identifier, limit, 60)

			mu.Lock()
			defer mu.Unlock()
			if result.Allowed {
				allowed++
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, limit, allowed)
}

type failingStore struct{}

var errStoreDown = errors.New("connection refused")

func (f *failingStore) Increment(string, int64) (int64, error) { return 0, errStoreDown }
func (f *failingStore) Expire(string, time.Duration) error     { return errStoreDown }
func (f *failingStore) Get(string) (int64, error)              { return 0, errStoreDown }
func (f *failingStore) Delete(string) error                    { return errStoreDown }
func (f *failingStore) Ping() error                            { return errStoreDown }

func Test_Check_CounterStoreUnavailable_FailsOpen(t *testing.T) {
	engine := NewEngine(&failingStore{}, logger.GetLogger())

	for i := 0; i < 10; i++ {
		result := engine.Check(ScopeIP, "10.0.0.1", 1, 60)

		assert.True(t, result.Allowed, "request %d must pass when the store is down", i+1)
		assert.Equal(t, 1, result.Remaining)
	}
}

func Test_Check_FreshWindow_SetsExpiryOnce(t *testing.T) {
	store := counter_utils.NewMemoryStore()
	engine := NewEngine(store, logger.GetLogger())
	identifier := uuid.New().String()
	window := 3600

	engine.Check(ScopeIP, identifier, 10, window)
	engine.Check(ScopeIP, identifier, 10, window)

	bucket := time.Now().Unix() / int64(window)
	key := fmt.Sprintf("rate_limit:ip:%s:%d", identifier, bucket)

	count, err := store.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
