package checks

import (
	"context"
	"time"

	"github.com/charlesng35/usercache/internal/monitoring"
)

const defaultCacheTimeout = 2 * time.Second

// CachePinger is the minimal interface required to probe a cache backend.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// Cache returns a readiness probe for the configured cache backend.
func Cache(driver string, client CachePinger, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("cache", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if client == nil {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusDown,
				Details:  "cache not configured",
				Duration: time.Since(start),
			}
		}

		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout, defaultCacheTimeout))
		defer cancel()

		if err := client.Ping(probeCtx); err != nil {
			result := monitoring.ResultFromError("cache", err, time.Since(start))
			result.Details = driver + ": " + result.Details
			return result
		}

		return monitoring.ProbeResult{
			Status:   monitoring.StatusUp,
			Details:  driver,
			Duration: time.Since(start),
		}
	})
}
