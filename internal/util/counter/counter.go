package counter_utils

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"
)

const DefaultCounterTimeout = 5 * time.Second

// Store is the atomic counter contract the rate limiter and usage meter
// build on. Increment must be atomic server-side: N concurrent increments
// of 1 sum to exactly N.
type Store interface {
	Increment(key string, delta int64) (int64, error)
	Expire(key string, ttl time.Duration) error
	Get(key string) (int64, error)
	Delete(key string) error
	Ping() error
}

type ValkeyStore struct {
	client  valkey.Client
	timeout time.Duration
}

func NewValkeyStore(client valkey.Client) *ValkeyStore {
	return &ValkeyStore{
		client:  client,
		timeout: DefaultCounterTimeout,
	}
}

func (s *ValkeyStore) Increment(key string, delta int64) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	result := s.client.Do(ctx, s.client.B().Incrby().Key(key).Increment(delta).Build())
	if result.Error() != nil {
		return 0, result.Error()
	}

	return result.AsInt64()
}

func (s *ValkeyStore) Expire(key string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	result := s.client.Do(ctx, s.client.B().Expire().Key(key).Seconds(int64(ttl.Seconds())).Build())
	return result.Error()
}

func (s *ValkeyStore) Get(key string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	result := s.client.Do(ctx, s.client.B().Get().Key(key).Build())
	if result.Error() != nil {
		if valkey.IsValkeyNil(result.Error()) {
			return 0, nil
		}
		return 0, result.Error()
	}

	return result.AsInt64()
}

func (s *ValkeyStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	result := s.client.Do(ctx, s.client.B().Del().Key(key).Build())
	return result.Error()
}

func (s *ValkeyStore) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	result := s.client.Do(ctx, s.client.B().Ping().Build())
	return result.Error()
}
