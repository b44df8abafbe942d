package api_keys

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type ApiKeyController struct {
	apiKeyService *ApiKeyService

	// Verification is deliberately slow (bcrypt), so the public validate
	// endpoint gets an in-process limiter on top of the shared tiers.
	validateLimiter *rate.Limiter
}

func (c *ApiKeyController) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/api-keys/validate", c.ValidateApiKey)
}

func (c *ApiKeyController) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.POST("/merchants/:merchantId/api-keys", c.CreateApiKey)
	router.GET("/merchants/:merchantId/api-keys", c.GetApiKeys)
	router.POST("/api-keys/:keyId/rotate", c.RotateApiKey)
	router.DELETE("/api-keys/:keyId", c.RevokeApiKey)
	router.GET("/api-keys/:keyId/usage", c.GetApiKeyUsage)
	// Static segment kept out of the /api-keys subtree so it cannot
	// collide with the :keyId parameter routes
	router.POST("/expired-keys/sweep", c.ProcessExpiredKeys)
}

// CreateApiKey
// @Summary Create a new API key
// @Description Issue a merchant API key; the plaintext is returned exactly once
// @Tags api-keys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param merchantId path string true "Merchant ID"
// @Param request body CreateApiKeyRequestDTO true "API key creation data"
// @Success 200 {object} ApiKey
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/merchants/{merchantId}/api-keys [post]
func (c *ApiKeyController) CreateApiKey(ctx *gin.Context) {
	merchantID, err := uuid.Parse(ctx.Param("merchantId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid merchant ID"})
		return
	}

	var request CreateApiKeyRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	response, err := c.apiKeyService.GenerateKey(merchantID, &request)
	if err != nil {
		if errors.Is(err, ErrInvalidEnvironment) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create API key"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetApiKeys
// @Summary List merchant API keys
// @Tags api-keys
// @Produce json
// @Security BearerAuth
// @Param merchantId path string true "Merchant ID"
// @Success 200 {object} GetApiKeysResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /admin/merchants/{merchantId}/api-keys [get]
func (c *ApiKeyController) GetApiKeys(ctx *gin.Context) {
	merchantID, err := uuid.Parse(ctx.Param("merchantId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid merchant ID"})
		return
	}

	response, err := c.apiKeyService.GetMerchantApiKeys(merchantID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get API keys"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// RotateApiKey
// @Summary Rotate an API key
// @Description Issue a replacement key; the old key stays active until revoked or swept
// @Tags api-keys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param keyId path string true "API Key ID"
// @Param request body RotateApiKeyRequestDTO false "Rotation options"
// @Success 200 {object} ApiKey
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/api-keys/{keyId}/rotate [post]
func (c *ApiKeyController) RotateApiKey(ctx *gin.Context) {
	apiKeyID, err := uuid.Parse(ctx.Param("keyId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid API key ID"})
		return
	}

	request := RotateApiKeyRequestDTO{}
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&request); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}
	}

	response, err := c.apiKeyService.RotateKey(apiKeyID, request.GraceDays)
	if err != nil {
		if errors.Is(err, ErrApiKeyNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rotate API key"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// RevokeApiKey
// @Summary Revoke an API key
// @Description Terminal and idempotent
// @Tags api-keys
// @Produce json
// @Security BearerAuth
// @Param keyId path string true "API Key ID"
// @Success 200 {object} ApiKey
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/api-keys/{keyId} [delete]
func (c *ApiKeyController) RevokeApiKey(ctx *gin.Context) {
	apiKeyID, err := uuid.Parse(ctx.Param("keyId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid API key ID"})
		return
	}

	response, err := c.apiKeyService.RevokeKey(apiKeyID)
	if err != nil {
		if errors.Is(err, ErrApiKeyNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke API key"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetApiKeyUsage
// @Summary Get request statistics for an API key
// @Tags api-keys
// @Produce json
// @Security BearerAuth
// @Param keyId path string true "API Key ID"
// @Param startDate query string false "Range start (RFC3339)" format(date-time)
// @Param endDate query string false "Range end (RFC3339)" format(date-time)
// @Success 200 {object} KeyUsageResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/api-keys/{keyId}/usage [get]
func (c *ApiKeyController) GetApiKeyUsage(ctx *gin.Context) {
	apiKeyID, err := uuid.Parse(ctx.Param("keyId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid API key ID"})
		return
	}

	var start, end *time.Time
	if raw := ctx.Query("startDate"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate"})
			return
		}
		start = &parsed
	}
	if raw := ctx.Query("endDate"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate"})
			return
		}
		end = &parsed
	}

	response, err := c.apiKeyService.GetKeyUsage(apiKeyID, start, end)
	if err != nil {
		if errors.Is(err, ErrApiKeyNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get key usage"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// ProcessExpiredKeys
// @Summary Sweep expired API keys immediately
// @Description Transitions active keys whose expiry has passed; idempotent
// @Tags api-keys
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProcessExpiredKeysResponseDTO
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/expired-keys/sweep [post]
func (c *ApiKeyController) ProcessExpiredKeys(ctx *gin.Context) {
	count, err := c.apiKeyService.ProcessExpiredKeys()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process expired keys"})
		return
	}

	ctx.JSON(http.StatusOK, ProcessExpiredKeysResponseDTO{ExpiredCount: count})
}

// ValidateApiKey
// @Summary Validate an API key
// @Description Resolve a plaintext key to its merchant identity and permissions
// @Tags api-keys
// @Accept json
// @Produce json
// @Param request body ValidateKeyRequestDTO true "Key to validate"
// @Success 200 {object} KeyValidation
// @Failure 400 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /api-keys/validate [post]
func (c *ApiKeyController) ValidateApiKey(ctx *gin.Context) {
	if !c.validateLimiter.Allow() {
		ctx.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many validation requests"})
		return
	}

	var request ValidateKeyRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	validation, err := c.apiKeyService.ValidateKey(request.Key)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate API key"})
		return
	}

	ctx.JSON(http.StatusOK, validation)
}
