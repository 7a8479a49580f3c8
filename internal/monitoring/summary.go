package monitoring

import "time"

// Summary is a point-in-time view of the in-process counters.
type Summary struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Cache       []CacheKeySummary  `json:"cache"`
	Maintenance MaintenanceSummary `json:"maintenance"`
}

type CacheKeySummary struct {
	Key                     string        `json:"key"`
	Hits                    uint64        `json:"hits"`
	Misses                  uint64        `json:"misses"`
	Errors                  uint64        `json:"errors"`
	HitRatio                float64       `json:"hit_ratio"`
	SourceFetches           uint64        `json:"source_fetches"`
	AverageFetchSeconds     float64       `json:"average_fetch_seconds"`
	LastSourceFetchDuration time.Duration `json:"last_source_fetch_duration"`
}

type MaintenanceSummary struct {
	Jobs []MaintenanceJobSummary `json:"jobs"`
}

type MaintenanceJobSummary struct {
	Job                 string        `json:"job"`
	LastStatus          string        `json:"last_status"`
	LastRunAt           time.Time     `json:"last_run_at"`
	LastDuration        time.Duration `json:"last_duration"`
	LastError           string        `json:"last_error,omitempty"`
	ConsecutiveFailures uint64        `json:"consecutive_failures"`
	ConsecutiveSuccess  uint64        `json:"consecutive_success"`
	LastSuccessAt       time.Time     `json:"last_success_at"`
	TotalRuns           uint64        `json:"total_runs"`
}

// Summary returns the counters of this module.
func (m *Module) Summary() Summary {
	if m == nil || m.stats == nil {
		return Summary{GeneratedAt: time.Now()}
	}
	return m.stats.summary()
}

// Snapshot returns a point-in-time summary from the current module when configured.
func Snapshot() Summary {
	return ensureModule().Summary()
}
