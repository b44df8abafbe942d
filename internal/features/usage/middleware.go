package usage

import (
	"time"

	request_logs "quotaguard/internal/features/request_logs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TrackingMiddleware meters API calls and records a request log row once
// the response has completed. Both writes are detached from the request
// outcome: they run after the decision is already on the wire.
func TrackingMiddleware(
	usageService *UsageService,
	requestLogService *request_logs.RequestLogService,
) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		merchantID, ok := merchantFromContext(ctx)
		if !ok {
			return
		}

		usageService.TrackUsage(merchantID, MetricApiCalls, 1)

		requestLog := &request_logs.RequestLog{
			MerchantID:     merchantID,
			RequestID:      ctx.GetString("requestId"),
			Endpoint:       ctx.FullPath(),
			Method:         ctx.Request.Method,
			StatusCode:     ctx.Writer.Status(),
			ResponseTimeMs: int(time.Since(start).Milliseconds()),
			ClientIP:       ctx.ClientIP(),
		}

		if keyID, ok := apiKeyFromContext(ctx); ok {
			requestLog.ApiKeyID = keyID
		}

		requestLogService.RecordRequest(requestLog)
	}
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
