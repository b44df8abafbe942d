package rate_limit

import (
	"fmt"
	"log/slog"
	"time"

	counter_utils "quotaguard/internal/util/counter"
)

type Scope string

const (
	ScopeIP       Scope = "ip"
	ScopeMerchant Scope = "merchant"
	ScopeEndpoint Scope = "endpoint"
	ScopeApiKey   Scope = "apiKey"
)

type Engine struct {
	store  counter_utils.Store
	logger *slog.Logger
}

type Result struct {
	Allowed       bool `json:"allowed"`
	Remaining     int  `json:"remaining"`
	ResetAfterSec int  `json:"resetAfterSec"`
}

const keyPrefix = "rate_limit:"

func NewEngine(store counter_utils.Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logger,
	}
}

// Check admits or rejects one event against a fixed-window budget. The
// window is an aligned bucket of windowSeconds; a burst straddling a bucket
// boundary can admit up to ~2x the limit over a short span, which is the
// accepted cost of O(1) bookkeeping.
//
// Any counter store failure fails open: degraded rate limiting must never
// block legitimate traffic.
func (e *Engine) Check(scope Scope, identifier string, limit, windowSeconds int) *Result {
	bucket := time.Now().Unix() / int64(windowSeconds)
	key := fmt.Sprintf("%s%s:%s:%d", keyPrefix, scope, identifier, bucket)

	count, err := e.store.Increment(key, 1)
	if err != nil {
		e.logger.Error("rate limit counter unavailable, failing open",
			slog.String("scope", string(scope)),
			slog.String("error", err.Error()))

		return &Result{Allowed: true, Remaining: limit, ResetAfterSec: windowSeconds}
	}

	// Only the first increment in a bucket sets the expiry; later hits in
	// the same bucket share it.
	if count == 1 {
		if err := e.store.Expire(key, time.Duration(windowSeconds)*time.Second); err != nil {
			e.logger.Warn("failed to set rate limit window expiry",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:       count <= int64(limit),
		Remaining:     remaining,
		ResetAfterSec: windowSeconds,
	}
}

// Reset clears the current window for one identifier. Test helper.
func (e *Engine) Reset(scope Scope, identifier string, windowSeconds int) error {
	bucket := time.Now().Unix() / int64(windowSeconds)
	key := fmt.Sprintf("%s%s:%s:%d", keyPrefix, scope, identifier, bucket)

	return e.store.Delete(key)
}
