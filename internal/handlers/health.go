package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/usercache/internal/monitoring"
)

const readinessTimeout = 5 * time.Second

// Health reports liveness. It never touches a dependency.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Readiness evaluates the registered liveness and readiness probes and
// responds 503 when any of them is not up.
func Readiness(manager *monitoring.HealthManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if manager == nil {
			c.JSON(http.StatusOK, monitoring.HealthReport{Success: true, Status: monitoring.StatusUp, Checks: []monitoring.ProbeResult{}})
			return
		}

		ctx, cancel := context.WithTimeout(requestContext(c), readinessTimeout)
		defer cancel()

		report := monitoring.MergeReports(manager.EvaluateLiveness(ctx), manager.EvaluateReadiness(ctx))
		status := http.StatusOK
		if !report.Success {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	}
}
