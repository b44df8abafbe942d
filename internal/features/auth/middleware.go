package auth

import (
	"net/http"
	"strings"

	api_keys "quotaguard/internal/features/api_keys"
	security_events "quotaguard/internal/features/security_events"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Invalid credentials always produce this one message so callers cannot
// learn whether a key was unknown, revoked, or expired.
const invalidCredentialMessage = "Invalid or expired API key"

// RequestIDMiddleware attaches a correlation id, honoring one supplied by
// the caller.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx.Set("requestId", requestID)
		ctx.Header("X-Request-Id", requestID)
		ctx.Next()
	}
}

// ApiKeyAuthMiddleware resolves a bearer API key to a merchant identity and
// permission set, and records auth security events.
func ApiKeyAuthMiddleware(
	apiKeyService *api_keys.ApiKeyService,
	eventService *security_events.SecurityEventService,
) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetString("requestId")

		token := bearerToken(ctx)
		if token == "" {
			ctx.JSON(http.StatusUnauthorized, gin.H{
				"success":   false,
				"error":     "API key required",
				"requestId": requestID,
			})
			ctx.Abort()
			return
		}

		validation, err := apiKeyService.ValidateKey(token)
		if err != nil || !validation.Valid {
			eventService.WriteEvent(
				security_events.EventAuthFailure,
				nil, nil,
				ctx.ClientIP(), requestID,
				"API key validation failed",
			)

			ctx.JSON(http.StatusUnauthorized, gin.H{
				"success":   false,
				"error":     invalidCredentialMessage,
				"requestId": requestID,
			})
			ctx.Abort()
			return
		}

		eventService.WriteEvent(
			security_events.EventAuthSuccess,
			&validation.MerchantID, &validation.KeyID,
			ctx.ClientIP(), requestID,
			"",
		)

		ctx.Set("merchantId", validation.MerchantID)
		ctx.Set("apiKeyId", validation.KeyID)
		ctx.Set("permissions", api_keys.PermissionList(validation.Permissions))
		ctx.Next()
	}
}

// RequirePermission rejects authenticated requests whose key lacks the
// scope (the "*" wildcard grants everything).
func RequirePermission(
	eventService *security_events.SecurityEventService,
	scope string,
) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetString("requestId")

		permissions, ok := PermissionsFromContext(ctx)
		if !ok || !permissions.Contains(scope) {
			merchantID, _ := MerchantFromContext(ctx)

			var merchantRef *uuid.UUID
			if merchantID != uuid.Nil {
				merchantRef = &merchantID
			}

			eventService.WriteEvent(
				security_events.EventAccessDenied,
				merchantRef, nil,
				ctx.ClientIP(), requestID,
				"missing permission: "+scope,
			)

			ctx.JSON(http.StatusForbidden, gin.H{
				"success":   false,
				"error":     "Insufficient permissions",
				"requestId": requestID,
			})
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}

// RequireMerchantMatch stops an authenticated key from reaching another
// merchant's resources.
func RequireMerchantMatch() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetString("requestId")

		pathMerchantID, err := uuid.Parse(ctx.Param("merchantId"))
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"success":   false,
				"error":     "Invalid merchant ID",
				"requestId": requestID,
			})
			ctx.Abort()
			return
		}

		merchantID, ok := MerchantFromContext(ctx)
		if !ok || merchantID != pathMerchantID {
			ctx.JSON(http.StatusForbidden, gin.H{
				"success":   false,
				"error":     "Merchant mismatch",
				"requestId": requestID,
			})
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}

func MerchantFromContext(ctx *gin.Context) (uuid.UUID, bool) {
	value, exists := ctx.Get("merchantId")
	if !exists {
		return uuid.Nil, false
	}

	merchantID, ok := value.(uuid.UUID)
	return merchantID, ok
}

func PermissionsFromContext(ctx *gin.Context) (api_keys.PermissionList, bool) {
	value, exists := ctx.Get("permissions")
	if !exists {
		return nil, false
	}

	permissions, ok := value.(api_keys.PermissionList)
	return permissions, ok
}

func bearerToken(ctx *gin.Context) string {
	token := ctx.GetHeader("Authorization")

	if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
		return token[7:]
	}

	return token
}
