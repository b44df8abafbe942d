package usage

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UsageController struct {
	usageService *UsageService
}

func (c *UsageController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/merchants/:merchantId/usage", c.GetCurrentUsage)
	router.GET("/merchants/:merchantId/usage/forecast", c.GetUsageForecast)
	router.GET("/merchants/:merchantId/usage/history", c.GetUsageHistory)
}

func (c *UsageController) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.PUT("/merchants/:merchantId/limits", c.SetUsageLimits)
}

// GetCurrentUsage
// @Summary Current period usage per metric
// @Tags usage
// @Produce json
// @Security BearerAuth
// @Param merchantId path string true "Merchant ID"
// @Success 200 {object} CurrentUsageResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /merchants/{merchantId}/usage [get]
func (c *UsageController) GetCurrentUsage(ctx *gin.Context) {
	merchantID, err := uuid.Parse(ctx.Param("merchantId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid merchant ID"})
		return
	}

	response, err := c.usageService.GetCurrentUsage(merchantID)
	if err != nil {
		if errors.Is(err, ErrLimitsNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get current usage"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetUsageForecast
// @Summary Linear usage projection for the current month
// @Tags usage
// @Produce json
// @Security BearerAuth
// @Param merchantId path string true "Merchant ID"
// @Param metric query string true "Metric type"
// @Success 200 {object} UsageForecastDTO
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /merchants/{merchantId}/usage/forecast [get]
func (c *UsageController) GetUsageForecast(ctx *gin.Context) {
	merchantID, err := uuid.Parse(ctx.Param("merchantId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid merchant ID"})
		return
	}

	metric := MetricType(ctx.Query("metric"))

	response, err := c.usageService.GetUsageForecast(merchantID, metric)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownMetric):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrLimitsNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get usage forecast"})
		}
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetUsageHistory
// @Summary Daily usage rollups over a date range
// @Tags usage
// @Produce json
// @Security BearerAuth
// @Param merchantId path string true "Merchant ID"
// @Param metric query string true "Metric type"
// @Param startDate query string false "Range start (RFC3339)" format(date-time)
// @Param endDate query string false "Range end (RFC3339)" format(date-time)
// @Success 200 {array} UsageHistoryEntryDTO
// @Failure 400 {object} map[string]string
// @Router /merchants/{merchantId}/usage/history [get]
func (c *UsageController) GetUsageHistory(ctx *gin.Context) {
	merchantID, err := uuid.Parse(ctx.Param("merchantId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid merchant ID"})
		return
	}

	metric := MetricType(ctx.Query("metric"))

	end := time.Now().UTC()
	if raw := ctx.Query("endDate"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate"})
			return
		}
		end = parsed
	}

	start := end.AddDate(0, -1, 0)
	if raw := ctx.Query("startDate"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate"})
			return
		}
		start = parsed
	}

	response, err := c.usageService.GetUsageHistory(merchantID, metric, start, end)
	if err != nil {
		if errors.Is(err, ErrUnknownMetric) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get usage history"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// SetUsageLimits
// @Summary Upsert a merchant's plan and quotas (admin only)
// @Tags usage
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param merchantId path string true "Merchant ID"
// @Param request body SetUsageLimitsRequestDTO true "Plan and quota overrides"
// @Success 200 {object} UsageLimits
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /admin/merchants/{merchantId}/limits [put]
func (c *UsageController) SetUsageLimits(ctx *gin.Context) {
	merchantID, err := uuid.Parse(ctx.Param("merchantId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid merchant ID"})
		return
	}

	var request SetUsageLimitsRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	response, err := c.usageService.SetUsageLimits(merchantID, &request)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownPlan), errors.Is(err, ErrUnknownMetric), errors.Is(err, ErrNegativeQuota):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set usage limits"})
		}
		return
	}

	ctx.JSON(http.StatusOK, response)
}
