package models

import "time"

// SystemMetrics is a lightweight snapshot of the console's runtime counters.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	ProjectionsTotal         uint64    `json:"projections_total"`
	BackendCallsTotal        uint64    `json:"backend_calls_total"`
	AverageBackendDurationMs float64   `json:"average_backend_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
