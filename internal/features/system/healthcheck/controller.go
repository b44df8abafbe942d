package system_healthcheck

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthcheckController struct {
	healthcheckService *HealthcheckService
}

func (c *HealthcheckController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/healthcheck", c.GetHealth)
}

// GetHealth
// @Summary Service liveness
// @Description Checks database and counter store reachability
// @Tags system
// @Produce json
// @Success 200 {object} HealthStatus
// @Failure 503 {object} map[string]string
// @Router /healthcheck [get]
func (c *HealthcheckController) GetHealth(ctx *gin.Context) {
	status, err := c.healthcheckService.CheckHealth()
	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, status)
}
