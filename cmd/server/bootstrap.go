package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/usercache/internal/api"
	"github.com/charlesng35/usercache/internal/app"
	"github.com/charlesng35/usercache/internal/app/maintenance"
	"github.com/charlesng35/usercache/internal/cache"
	"github.com/charlesng35/usercache/internal/database"
	"github.com/charlesng35/usercache/internal/monitoring"
	"github.com/charlesng35/usercache/internal/monitoring/checks"
	"github.com/charlesng35/usercache/internal/services"
)

const startupProbeTimeout = 3 * time.Second

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB         *gorm.DB
	Cache      cache.Store
	Cleaner    *maintenance.Cleaner
	Monitoring *monitoring.Module
	Users      *services.UserService
	Router     *gin.Engine
}

// bootstrapRuntime opens the database and cache, wires services and builds the
// HTTP router. Unreachable backends are reported but never abort startup.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	stack.Cache, err = initialiseCache(ctx, cfg, stack.DB, log)
	if err != nil {
		return nil, err
	}

	if purger, ok := stack.Cache.(maintenance.ExpiredPurger); ok {
		stack.Cleaner = maintenance.NewCleaner(purger, maintenance.WithCacheSchedule(cfg.Maintenance.CacheCleanupSchedule))
		if err := stack.Cleaner.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	stack.Monitoring, err = monitoring.NewModule(monitoring.Options{})
	if err != nil {
		return nil, fmt.Errorf("initialise monitoring: %w", err)
	}
	monitoring.SetModule(stack.Monitoring)
	registerReadinessChecks(stack, cfg)

	client, err := database.NewClient(stack.DB)
	if err != nil {
		return nil, err
	}
	stack.Users, err = services.NewUserService(client, stack.Cache, cfg.Cache.UsersTTL)
	if err != nil {
		return nil, fmt.Errorf("initialise user service: %w", err)
	}

	stack.Router, err = api.NewRouter(api.Dependencies{
		Config:     cfg,
		Users:      stack.Users,
		Monitoring: stack.Monitoring,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner.Enabled() {
		<-s.Cleaner.Stop().Done()

		runCtx, cancel := context.WithTimeout(ctx, startupProbeTimeout)
		if err := s.Cleaner.RunOnce(runCtx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
		cancel()
	}

	if closer, ok := s.Cache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Warn("cache shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		if err := database.Close(s.DB); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}
}

func initialiseDatabase(ctx context.Context, cfg *app.Config, log *zap.Logger) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, startupProbeTimeout)
	defer cancel()
	if err := database.Ping(pingCtx, db); err != nil {
		log.Warn("database unreachable; /users will fail until it recovers",
			zap.String("driver", dbCfg.Driver),
			zap.Error(err),
		)
	} else {
		log.Info("database connected", zap.String("driver", dbCfg.Driver))
	}

	return db, nil
}

func initialiseCache(ctx context.Context, cfg *app.Config, db *gorm.DB, log *zap.Logger) (cache.Store, error) {
	switch cfg.Cache.Driver {
	case "memory":
		log.Info("using in-process cache")
		return cache.NewMemoryStore(cfg.Cache.MemoryStoreConfig()), nil
	case "database":
		if err := database.AutoMigrateCache(db); err != nil {
			log.Warn("cache table migration failed", zap.Error(err))
		}
		log.Info("using database cache")
		return cache.NewDatabaseStore(db), nil
	default:
		redisCfg := cfg.Cache.RedisClientConfig()
		client, err := cache.NewRedisClient(redisCfg)
		if err != nil {
			return nil, fmt.Errorf("initialise redis client: %w", err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, startupProbeTimeout)
		defer cancel()
		if err := client.Ping(pingCtx); err != nil {
			log.Warn("redis unreachable; /users will fail until it recovers",
				zap.String("addr", redisCfg.Address()),
				zap.Error(err),
			)
		} else {
			log.Info("redis connected", zap.String("addr", redisCfg.Address()))
		}
		return client, nil
	}
}

func registerReadinessChecks(stack *runtimeStack, cfg *app.Config) {
	health := stack.Monitoring.Health()
	health.RegisterReadiness(checks.Database(stack.DB, 0))

	if pinger, ok := stack.Cache.(checks.CachePinger); ok {
		health.RegisterReadiness(checks.Cache(cfg.Cache.Driver, pinger, 0))
	}
	if stack.Cleaner.Enabled() {
		health.RegisterReadiness(checks.Maintenance(0))
	}
}
