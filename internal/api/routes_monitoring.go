package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/usercache/internal/app"
	"github.com/charlesng35/usercache/internal/monitoring"
)

func registerMonitoringRoutes(r *gin.Engine, cfg *app.Config, mon *monitoring.Module) {
	if mon == nil || !cfg.Monitoring.Prometheus.Enabled {
		return
	}

	endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
	if endpoint == "" {
		endpoint = "/metrics"
	}
	r.GET(endpoint, gin.WrapH(mon.Handler()))
}
