package monitoring

import (
	"strings"
	"time"
)

// Cache lookup outcomes.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// ObserveAPILatency captures the HTTP request latency for the supplied route.
func ObserveAPILatency(method, path, status string, duration time.Duration) {
	module := ensureModule()
	if module == nil {
		return
	}
	if duration < 0 {
		duration = 0
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = "UNKNOWN"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		path = "unknown"
	}
	status = strings.TrimSpace(status)
	if status == "" {
		status = "unknown"
	}
	module.metrics.apiLatency.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordCacheLookup counts a read-through lookup for key.
func RecordCacheLookup(key, result string) {
	module := ensureModule()
	if module == nil {
		return
	}
	key = normalizeKey(key)
	result = normalizeLabel(result)
	module.metrics.cacheLookups.WithLabelValues(key, result).Inc()
	module.stats.cacheEntry(key).record(result)
}

// ObserveSourceFetch records how long the loader behind key took.
func ObserveSourceFetch(key string, duration time.Duration) {
	module := ensureModule()
	if module == nil {
		return
	}
	key = normalizeKey(key)
	observeDuration(module.metrics.sourceFetchLatency.WithLabelValues(key), duration)
	module.stats.cacheEntry(key).recordFetch(duration)
}

// RecordMaintenanceRun records the completion of a maintenance job.
func RecordMaintenanceRun(job, result, message string, duration time.Duration) {
	module := ensureModule()
	if module == nil {
		return
	}
	jobID := normalizeLabel(job)
	result = normalizeLabel(result)
	module.metrics.maintenanceRuns.WithLabelValues(jobID, result).Inc()
	observeDuration(module.metrics.maintenanceDuration.WithLabelValues(jobID), duration)
	if result == "success" {
		module.metrics.maintenanceLastRun.WithLabelValues(jobID).Set(float64(time.Now().Unix()))
	}
	module.stats.maintenanceEntry(jobID).record(result, strings.TrimSpace(message), duration)
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}

func normalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "unknown"
	}
	return key
}
