package security_events

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SecurityEventController struct {
	eventService *SecurityEventService
}

func (c *SecurityEventController) RegisterRoutes(router *gin.RouterGroup) {
	// Admin auth is applied by the route group in main.go
	eventRoutes := router.Group("/security-events")

	eventRoutes.GET("", c.GetSecurityEvents)
}

// GetSecurityEvents
// @Summary List security events (admin only)
// @Description Retrieve auth and rate-limit security events
// @Tags security-events
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Limit number of results" default(100)
// @Param offset query int false "Offset for pagination" default(0)
// @Param type query string false "Filter by event type"
// @Param beforeDate query string false "Only events created before this date (RFC3339)" format(date-time)
// @Success 200 {object} GetSecurityEventsResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /admin/security-events [get]
func (c *SecurityEventController) GetSecurityEvents(ctx *gin.Context) {
	request := &GetSecurityEventsRequest{}
	if err := ctx.ShouldBindQuery(request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	response, err := c.eventService.GetEvents(request)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve security events"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}
