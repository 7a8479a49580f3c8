package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type statStore struct {
	cache       sync.Map // string -> *cacheStats
	maintenance sync.Map // string -> *maintenanceStats
}

func newStatStore() *statStore {
	return &statStore{}
}

func (s *statStore) summary() Summary {
	return Summary{
		GeneratedAt: time.Now(),
		Cache:       s.cloneCache(),
		Maintenance: MaintenanceSummary{
			Jobs: s.cloneMaintenance(),
		},
	}
}

func (s *statStore) cloneCache() []CacheKeySummary {
	summaries := []CacheKeySummary{}
	s.cache.Range(func(key, value any) bool {
		summaries = append(summaries, value.(*cacheStats).snapshot(key.(string)))
		return true
	})
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Key < summaries[j].Key })
	return summaries
}

func (s *statStore) cloneMaintenance() []MaintenanceJobSummary {
	summaries := []MaintenanceJobSummary{}
	s.maintenance.Range(func(key, value any) bool {
		job := key.(string)
		stats := value.(*maintenanceStats)
		summaries = append(summaries, stats.snapshot(job))
		return true
	})
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Job < summaries[j].Job })
	return summaries
}

func (s *statStore) cacheEntry(key string) *cacheStats {
	value, ok := s.cache.Load(key)
	if ok {
		return value.(*cacheStats)
	}
	stats := &cacheStats{}
	actual, _ := s.cache.LoadOrStore(key, stats)
	return actual.(*cacheStats)
}

func (s *statStore) maintenanceEntry(job string) *maintenanceStats {
	value, ok := s.maintenance.Load(job)
	if ok {
		return value.(*maintenanceStats)
	}
	stats := &maintenanceStats{}
	actual, _ := s.maintenance.LoadOrStore(job, stats)
	return actual.(*maintenanceStats)
}

type cacheStats struct {
	hits         atomic.Uint64
	misses       atomic.Uint64
	errors       atomic.Uint64
	fetches      atomic.Uint64
	totalFetchNs atomic.Uint64
	lastFetchNs  atomic.Int64 // nanoseconds
}

func (c *cacheStats) record(result string) {
	switch result {
	case "hit":
		c.hits.Add(1)
	case "miss":
		c.misses.Add(1)
	default:
		c.errors.Add(1)
	}
}

func (c *cacheStats) recordFetch(d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.fetches.Add(1)
	c.totalFetchNs.Add(uint64(d))
	c.lastFetchNs.Store(int64(d))
}

func (c *cacheStats) snapshot(key string) CacheKeySummary {
	hits := c.hits.Load()
	misses := c.misses.Load()
	fetches := c.fetches.Load()

	var ratio, avg float64
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	if fetches > 0 {
		avg = float64(c.totalFetchNs.Load()) / float64(fetches) / float64(time.Second)
	}

	return CacheKeySummary{
		Key:                     key,
		Hits:                    hits,
		Misses:                  misses,
		Errors:                  c.errors.Load(),
		HitRatio:                ratio,
		SourceFetches:           fetches,
		AverageFetchSeconds:     avg,
		LastSourceFetchDuration: time.Duration(c.lastFetchNs.Load()),
	}
}

type maintenanceStats struct {
	lastStatus           atomic.Value // string
	lastError            atomic.Value // string
	lastRun              atomic.Int64 // unix nano
	lastDuration         atomic.Int64 // nanoseconds
	consecutiveFailures  atomic.Uint64
	totalRuns            atomic.Uint64
	lastSuccessfulRun    atomic.Int64
	consecutiveSuccesses atomic.Uint64
}

func (m *maintenanceStats) snapshot(job string) MaintenanceJobSummary {
	status, _ := m.lastStatus.Load().(string)
	errMsg, _ := m.lastError.Load().(string)

	return MaintenanceJobSummary{
		Job:                 job,
		LastStatus:          status,
		LastRunAt:           time.Unix(0, m.lastRun.Load()),
		LastDuration:        time.Duration(m.lastDuration.Load()),
		LastError:           errMsg,
		ConsecutiveFailures: m.consecutiveFailures.Load(),
		ConsecutiveSuccess:  m.consecutiveSuccesses.Load(),
		LastSuccessAt:       time.Unix(0, m.lastSuccessfulRun.Load()),
		TotalRuns:           m.totalRuns.Load(),
	}
}

func (m *maintenanceStats) record(result, message string, duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	now := time.Now()
	m.lastStatus.Store(result)
	m.lastError.Store(message)
	m.lastRun.Store(now.UnixNano())
	m.lastDuration.Store(int64(duration))
	m.totalRuns.Add(1)

	switch result {
	case "success":
		m.consecutiveFailures.Store(0)
		m.consecutiveSuccesses.Add(1)
		m.lastSuccessfulRun.Store(now.UnixNano())
	default:
		m.consecutiveFailures.Add(1)
		m.consecutiveSuccesses.Store(0)
	}
}
