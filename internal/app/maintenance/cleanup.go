package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/usercache/internal/monitoring"
	"github.com/charlesng35/usercache/pkg/logger"
)

const (
	// CacheCleanupJob names the job that purges expired SQL cache rows.
	CacheCleanupJob = "cache_cleanup"

	defaultCacheCleanupSpec = "@every 5m"
	jobTimeout              = time.Minute
)

// ExpiredPurger removes entries that expired at or before now.
type ExpiredPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type job struct {
	name     string
	schedule string
	purger   ExpiredPurger
}

// Cleaner runs periodic purges of expired cache state.
type Cleaner struct {
	jobs []job
	cron *cron.Cron
	now  func() time.Time
	log  *zap.Logger

	cacheSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithCacheSchedule overrides the cron specification for cache cleanup.
func WithCacheSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cacheSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. A nil cache disables the cache cleanup job.
func NewCleaner(cache ExpiredPurger, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		now:           time.Now,
		cacheSchedule: defaultCacheCleanupSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	if cache != nil {
		cleaner.jobs = append(cleaner.jobs, job{
			name:     CacheCleanupJob,
			schedule: cleaner.cacheSchedule,
			purger:   cache,
		})
	}

	return cleaner
}

// Enabled reports whether any job is registered.
func (c *Cleaner) Enabled() bool {
	return c != nil && len(c.jobs) > 0
}

// Start registers the jobs with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if !c.Enabled() {
		return nil
	}

	for _, j := range c.jobs {
		if _, err := c.cron.AddFunc(j.schedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			if err := c.run(ctx, j); err != nil {
				c.log.Warn("maintenance job failed", zap.String("job", j.name), zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("maintenance: schedule %s %q: %w", j.name, j.schedule, err)
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler. The returned context is done once
// running jobs complete.
func (c *Cleaner) Stop() context.Context {
	if c == nil || c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes every job sequentially.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	for _, j := range c.jobs {
		errs = multierr.Append(errs, c.run(ctx, j))
	}
	return errs
}

func (c *Cleaner) run(ctx context.Context, j job) error {
	start := time.Now()
	removed, err := j.purger.PurgeExpired(ctx, c.now())
	elapsed := time.Since(start)

	if err != nil {
		monitoring.RecordMaintenanceRun(j.name, "failure", err.Error(), elapsed)
		return fmt.Errorf("%s: %w", j.name, err)
	}

	monitoring.RecordMaintenanceRun(j.name, "success", "", elapsed)
	if removed > 0 {
		c.log.Info("purged expired entries", zap.String("job", j.name), zap.Int64("removed", removed))
	}
	return nil
}
