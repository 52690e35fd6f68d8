package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
	"github.com/thilinahansana/university-scheduler-console/internal/projection"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	cacheLatency       prometheus.Observer
	cacheWrite         prometheus.Observer
	cacheHitRatio      prometheus.Gauge
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	projectionDuration *prometheus.HistogramVec
	projectionEntries  *prometheus.HistogramVec
	matchDecisions     *prometheus.CounterVec
	backendDuration    *prometheus.HistogramVec
	exportJobs         *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	projectionCount      uint64
	backendCount         uint64
	backendDurationTotal uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	projectionDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_projection_duration_seconds",
		Help:    "Duration of grid projection passes",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	}, []string{"mode"})

	projectionEntries := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_projection_entries",
		Help:    "Number of cell entries produced per projection",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"mode"})

	matchDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_match_decisions_total",
		Help: "Eligibility decisions by deciding rule",
	}, []string{"rule", "matched"})

	backendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_backend_duration_seconds",
		Help:    "Duration of timetable backend fetches",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	exportJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_export_jobs_total",
		Help: "Export jobs by format and final status",
	}, []string{"format", "status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		projectionDuration, projectionEntries, matchDecisions, backendDuration, exportJobs, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		cacheLatency:       cacheLatency,
		cacheWrite:         cacheWrite,
		cacheHitRatio:      cacheHitRatio,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
		projectionDuration: projectionDuration,
		projectionEntries:  projectionEntries,
		matchDecisions:     matchDecisions,
		backendDuration:    backendDuration,
		exportJobs:         exportJobs,
	}
}

// Registry exposes the underlying registry, used by tests to gather collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveProjection records one projection pass.
func (m *MetricsService) ObserveProjection(mode models.GridMode, entries int, duration time.Duration) {
	if m == nil {
		return
	}
	m.projectionDuration.WithLabelValues(string(mode)).Observe(duration.Seconds())
	m.projectionEntries.WithLabelValues(string(mode)).Observe(float64(entries))
	atomic.AddUint64(&m.projectionCount, 1)
}

// RecordDecisions adds eligibility decisions to the per-rule counters.
func (m *MetricsService) RecordDecisions(decisions []projection.Decision) {
	if m == nil {
		return
	}
	for _, d := range decisions {
		m.matchDecisions.WithLabelValues(string(d.Rule), strconv.FormatBool(d.Matched)).Inc()
	}
}

// ObserveBackend records a snapshot fetch against the backend or the replica.
func (m *MetricsService) ObserveBackend(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.backendDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
	atomic.AddUint64(&m.backendCount, 1)
	atomic.AddUint64(&m.backendDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordExportJob counts a finished or failed export job.
func (m *MetricsService) RecordExportJob(format string, status models.ExportStatus) {
	if m == nil {
		return
	}
	m.exportJobs.WithLabelValues(format, string(status)).Inc()
}

// Snapshot returns aggregated metrics suitable for the admin summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	backendCalls := atomic.LoadUint64(&m.backendCount)
	backendDuration := atomic.LoadUint64(&m.backendDurationTotal)

	var cacheRatio float64
	if total := hits + misses; total > 0 {
		cacheRatio = float64(hits) / float64(total)
	}
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}
	var avgBackendMs float64
	if backendCalls > 0 {
		avgBackendMs = float64(backendDuration) / float64(backendCalls) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		ProjectionsTotal:         atomic.LoadUint64(&m.projectionCount),
		BackendCallsTotal:        backendCalls,
		AverageBackendDurationMs: avgBackendMs,
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
