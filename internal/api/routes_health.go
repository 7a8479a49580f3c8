package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/usercache/internal/app"
	"github.com/charlesng35/usercache/internal/handlers"
	"github.com/charlesng35/usercache/internal/monitoring"
)

// registerHealthRoutes mounts the liveness endpoint unconditionally and the
// dependency probes when health checks are enabled.
func registerHealthRoutes(r *gin.Engine, cfg *app.Config, mon *monitoring.Module) {
	r.GET("/health", handlers.Health())

	if !cfg.Monitoring.Health.Enabled || mon == nil {
		return
	}

	r.GET("/health/ready", handlers.Readiness(mon.Health()))
	if summary := handlers.NewMonitoringHandler(mon, cfg); summary != nil {
		r.GET("/health/summary", summary.Summary)
	}
}
