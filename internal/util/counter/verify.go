package counter_utils

import (
	"fmt"
	"time"

	"quotaguard/internal/cache"

	"github.com/google/uuid"
)

// TestCounterStoreConnection exercises the shared valkey counter store at
// boot. The limiter and meter fail open on store errors, so a misconfigured
// store must fail the process loudly here instead of silently degrading.
func TestCounterStoreConnection() {
	store := NewValkeyStore(cache.GetCache())

	if err := VerifyStore(store); err != nil {
		panic(fmt.Sprintf("Counter store connection test failed: %v", err))
	}
}

// VerifyStore runs one increment/expire/read/delete roundtrip against a
// throwaway key.
func VerifyStore(store Store) error {
	key := "test:counter_connection:" + uuid.New().String()

	value, err := store.Increment(key, 1)
	if err != nil {
		return fmt.Errorf("increment failed: %w", err)
	}
	if value != 1 {
		return fmt.Errorf("increment returned %d, expected 1", value)
	}

	if err := store.Expire(key, time.Minute); err != nil {
		return fmt.Errorf("expire failed: %w", err)
	}

	readBack, err := store.Get(key)
	if err != nil {
		return fmt.Errorf("get failed: %w", err)
	}
	if readBack != 1 {
		return fmt.Errorf("get returned %d, expected 1", readBack)
	}

	return store.Delete(key)
}
