package rate_limit

import (
	"fmt"
	"net/http"
	"strings"

	security_events "quotaguard/internal/features/security_events"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MiddlewareConfig struct {
	IPLimit     int
	IPWindowSec int
	SkipPaths   []string
	Bypass      bool
}

// Middleware enforces the IP tier on every request. It is mounted at the
// top of the chain, before any credential check; the merchant tier lives
// in MerchantMiddleware because identity only exists after key auth.
func Middleware(
	engine *Engine,
	eventService *security_events.SecurityEventService,
	cfg MiddlewareConfig,
) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if cfg.Bypass {
			ctx.Next()
			return
		}

		for _, path := range cfg.SkipPaths {
			if strings.HasPrefix(ctx.Request.URL.Path, path) {
				ctx.Next()
				return
			}
		}

		clientIP := ctx.ClientIP()

		result := engine.Check(ScopeIP, clientIP, cfg.IPLimit, cfg.IPWindowSec)
		if !result.Allowed {
			rejectRateLimited(ctx, eventService, cfg.IPLimit, result, nil)
			return
		}

		ctx.Next()
	}
}

// MerchantMiddleware enforces the merchant tier. It must run after the
// key auth middleware has attached a merchant identity; unattributed
// requests pass through untouched. The tier draws from its own budget,
// independent of the IP tier.
func MerchantMiddleware(
	engine *Engine,
	eventService *security_events.SecurityEventService,
	limit, windowSec int,
) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		merchantID, ok := merchantFromContext(ctx)
		if !ok {
			ctx.Next()
			return
		}

		result := engine.Check(ScopeMerchant, merchantID.String(), limit, windowSec)
		if !result.Allowed {
			rejectRateLimited(ctx, eventService, limit, result, &merchantID)
			return
		}

		ctx.Next()
	}
}

// EndpointMiddleware is the same primitive scoped to one route's budget.
func EndpointMiddleware(
	engine *Engine,
	eventService *security_events.SecurityEventService,
	endpoint string,
	limit, windowSec int,
) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identifier := endpoint + ":" + ctx.ClientIP()

		result := engine.Check(ScopeEndpoint, identifier, limit, windowSec)
		if !result.Allowed {
			rejectRateLimited(ctx, eventService, limit, result, nil)
			return
		}

		ctx.Next()
	}
}

// ApiKeyMiddleware budgets per credential; it requires the key auth
// middleware to have run first and is a no-op otherwise.
func ApiKeyMiddleware(
	engine *Engine,
	eventService *security_events.SecurityEventService,
	limit, windowSec int,
) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		keyID, ok := apiKeyFromContext(ctx)
		if !ok {
			ctx.Next()
			return
		}

		result := engine.Check(ScopeApiKey, keyID.String(), limit, windowSec)
		if !result.Allowed {
			rejectRateLimited(ctx, eventService, limit, result, nil)
			return
		}

		ctx.Next()
	}
}

func rejectRateLimited(
	ctx *gin.Context,
	eventService *security_events.SecurityEventService,
	limit int,
	result *Result,
	merchantID *uuid.UUID,
) {
	requestID := ctx.GetString("requestId")

	ctx.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
	ctx.Header("X-RateLimit-Remaining", "0")
	ctx.Header("Retry-After", fmt.Sprintf("%d", result.ResetAfterSec))

	eventService.WriteEvent(
		security_events.EventRateLimitExceeded,
		merchantID,
		nil,
		ctx.ClientIP(),
		requestID,
		ctx.Request.Method+" "+ctx.Request.URL.Path,
	)

	ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"success":   false,
		"error":     "Rate limit exceeded",
		"requestId": requestID,
	})
}

func merchantFromContext(ctx *gin.Context) (uuid.UUID, bool) {
	value, exists := ctx.Get("merchantId")
	if !exists {
		return uuid.Nil, false
	}

	merchantID, ok := value.(uuid.UUID)
	return merchantID, ok
}

func apiKeyFromContext(ctx *gin.Context) (uuid.UUID, bool) {
	value, exists := ctx.Get("apiKeyId")
	if !exists {
		return uuid.Nil, false
	}

	keyID, ok := value.(uuid.UUID)
	return keyID, ok
}
