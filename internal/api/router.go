package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/usercache/internal/app"
	"github.com/charlesng35/usercache/internal/handlers"
	"github.com/charlesng35/usercache/internal/middleware"
	"github.com/charlesng35/usercache/internal/monitoring"
)

// Dependencies are the process-scoped collaborators routes are wired to.
type Dependencies struct {
	Config     *app.Config
	Users      handlers.UserLister
	Monitoring *monitoring.Module
}

// NewRouter builds the Gin engine, wires middleware and registers every route.
// Requests no route matches fall through to the public directory.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config
	if cfg == nil {
		return nil, errors.New("config must be provided")
	}
	if deps.Users == nil {
		return nil, errors.New("user lister must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())

	landing := handlers.NewLandingHandler(cfg.Server.TemplatesDir)
	r.GET("/", landing.Index)

	registerHealthRoutes(r, cfg, deps.Monitoring)

	if err := registerUserRoutes(r, deps.Users); err != nil {
		return nil, err
	}

	registerMonitoringRoutes(r, cfg, deps.Monitoring)

	static := handlers.NewStaticHandler(cfg.Server.PublicDir)
	r.NoRoute(static.Serve)

	return r, nil
}
