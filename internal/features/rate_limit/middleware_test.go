package rate_limit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	security_events "quotaguard/internal/features/security_events"
	counter_utils "quotaguard/internal/util/counter"
	"quotaguard/internal/util/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func createMiddlewareTestRouter(cfg MiddlewareConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	engine := NewEngine(counter_utils.NewMemoryStore(), logger.GetLogger())
	eventService := security_events.GetSecurityEventService()

	router := gin.New()
	router.Use(Middleware(engine, eventService, cfg))

	router.GET("/api/v1/resource", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"success": true})
	})
	router.GET("/api/v1/healthcheck", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"success": true})
	})

	return router
}

// createTieredTestRouter mirrors the production chain: the IP tier first,
// then a stand-in for key auth that attaches the merchant identity, then
// the merchant and key tiers.
func createTieredTestRouter(
	ipLimit, tenantLimit, keyLimit int,
	merchantID, keyID uuid.UUID,
) *gin.Engine {
	gin.SetMode(gin.TestMode)

	engine := NewEngine(counter_utils.NewMemoryStore(), logger.GetLogger())
	eventService := security_events.GetSecurityEventService()

	router := gin.New()
	router.Use(Middleware(engine, eventService, MiddlewareConfig{
		IPLimit:     ipLimit,
		IPWindowSec: 60,
	}))
	router.Use(func(ctx *gin.Context) {
		ctx.Set("merchantId", merchantID)
		ctx.Set("apiKeyId", keyID)
	})
	router.Use(MerchantMiddleware(engine, eventService, tenantLimit, 60))
	router.Use(ApiKeyMiddleware(engine, eventService, keyLimit, 60))

	router.GET("/api/v1/resource", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"success": true})
	})

	return router
}

func makeMiddlewareRequest(router *gin.Engine, url string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, url, nil)
	request.RemoteAddr = "203.0.113.7:51234"

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func Test_Middleware_WithinIpLimit_PassesThrough(t *testing.T) {
	router := createMiddlewareTestRouter(MiddlewareConfig{
		IPLimit:     3,
		IPWindowSec: 60,
	})

	for i := 0; i < 3; i++ {
		response := makeMiddlewareRequest(router, "/api/v1/resource")
		assert.Equal(t, http.StatusOK, response.Code, "request %d should pass", i+1)
	}
}

func Test_Middleware_OverIpLimit_Returns429WithHeaders(t *testing.T) {
	router := createMiddlewareTestRouter(MiddlewareConfig{
		IPLimit:     3,
		IPWindowSec: 60,
	})

	for i := 0; i < 3; i++ {
		makeMiddlewareRequest(router, "/api/v1/resource")
	}

	response := makeMiddlewareRequest(router, "/api/v1/resource")

	assert.Equal(t, http.StatusTooManyRequests, response.Code)
	assert.Equal(t, "3", response.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", response.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", response.Header().Get("Retry-After"))
	assert.Contains(t, response.Body.String(), "Rate limit exceeded")
}

func Test_Middleware_SkipPath_NeverLimited(t *testing.T) {
	router := createMiddlewareTestRouter(MiddlewareConfig{
		IPLimit:     1,
		IPWindowSec: 60,
		SkipPaths:   []string{"/api/v1/healthcheck"},
	})

	for i := 0; i < 5; i++ {
		response := makeMiddlewareRequest(router, "/api/v1/healthcheck")
		assert.Equal(t, http.StatusOK, response.Code)
	}
}

func Test_Middleware_Bypass_DisablesIpTier(t *testing.T) {
	router := createMiddlewareTestRouter(MiddlewareConfig{
		IPLimit:     1,
		IPWindowSec: 60,
		Bypass:      true,
	})

	for i := 0; i < 5; i++ {
		response := makeMiddlewareRequest(router, "/api/v1/resource")
		assert.Equal(t, http.StatusOK, response.Code)
	}
}

func Test_MerchantMiddleware_MountedAfterAuth_DeniesAttributedTraffic(t *testing.T) {
	// Tier ordering matches setUpRoutes: the merchant tier sits behind the
	// identity-setting middleware, so a tenant budget of 1 must reject the
	// second authenticated request even while the IP tier has room.
	router := createTieredTestRouter(100, 1, 100, uuid.New(), uuid.New())

	response := makeMiddlewareRequest(router, "/api/v1/resource")
	assert.Equal(t, http.StatusOK, response.Code)

	response = makeMiddlewareRequest(router, "/api/v1/resource")

	assert.Equal(t, http.StatusTooManyRequests, response.Code)
	assert.Equal(t, "1", response.Header().Get("X-RateLimit-Limit"))
}

func Test_MerchantMiddleware_NoIdentityAttached_PassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := NewEngine(counter_utils.NewMemoryStore(), logger.GetLogger())

	router := gin.New()
	router.Use(MerchantMiddleware(engine, security_events.GetSecurityEventService(), 1, 60))
	router.GET("/resource", func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})

	for i := 0; i < 5; i++ {
		response := makeMiddlewareRequest(router, "/resource")
		assert.Equal(t, http.StatusOK, response.Code)
	}
}

func Test_MerchantMiddleware_DifferentMerchants_IsolatedBudgets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := NewEngine(counter_utils.NewMemoryStore(), logger.GetLogger())
	eventService := security_events.GetSecurityEventService()

	router := gin.New()
	router.Use(func(ctx *gin.Context) {
		merchantID, err := uuid.Parse(ctx.GetHeader("X-Test-Merchant"))
		if err == nil {
			ctx.Set("merchantId", merchantID)
		}
	})
	router.Use(MerchantMiddleware(engine, eventService, 1, 60))
	router.GET("/resource", func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})

	first := uuid.New()
	second := uuid.New()

	makeRequestAs := func(merchantID uuid.UUID) int {
		request := httptest.NewRequest(http.MethodGet, "/resource", nil)
		request.Header.Set("X-Test-Merchant", merchantID.String())

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		return recorder.Code
	}

	assert.Equal(t, http.StatusOK, makeRequestAs(first))
	assert.Equal(t, http.StatusTooManyRequests, makeRequestAs(first))
	assert.Equal(t, http.StatusOK, makeRequestAs(second))
}

func Test_ApiKeyMiddleware_KeyBudgetExhausted_Returns429(t *testing.T) {
	router := createTieredTestRouter(100, 100, 2, uuid.New(), uuid.New())

	for i := 0; i < 2; i++ {
		response := makeMiddlewareRequest(router, "/api/v1/resource")
		assert.Equal(t, http.StatusOK, response.Code, "request %d should pass", i+1)
	}

	response := makeMiddlewareRequest(router, "/api/v1/resource")

	assert.Equal(t, http.StatusTooManyRequests, response.Code)
	assert.Equal(t, "2", response.Header().Get("X-RateLimit-Limit"))
}

func Test_ApiKeyMiddleware_NoKeyInContext_PassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := NewEngine(counter_utils.NewMemoryStore(), logger.GetLogger())

	router := gin.New()
	router.Use(ApiKeyMiddleware(engine, security_events.GetSecurityEventService(), 1, 60))
	router.GET("/resource", func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})

	for i := 0; i < 5; i++ {
		response := makeMiddlewareRequest(router, "/resource")
		assert.Equal(t, http.StatusOK, response.Code)
	}
}

func Test_EndpointMiddleware_RouteBudgetExhausted_Returns429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := NewEngine(counter_utils.NewMemoryStore(), logger.GetLogger())

	router := gin.New()
	router.POST("/validate",
		EndpointMiddleware(engine, security_events.GetSecurityEventService(), "validate", 2, 60),
		func(ctx *gin.Context) { ctx.Status(http.StatusOK) },
	)

	for i := 0; i < 2; i++ {
		request := httptest.NewRequest(http.MethodPost, "/validate", nil)
		request.RemoteAddr = "203.0.113.7:51234"
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code, "request %d should pass", i+1)
	}

	request := httptest.NewRequest(http.MethodPost, "/validate", nil)
	request.RemoteAddr = "203.0.113.7:51234"
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
}
