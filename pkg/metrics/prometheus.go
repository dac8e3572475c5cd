// Package metrics provides Prometheus metrics for the dueline service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Resolution
	resolutions        *prometheus.CounterVec
	strategyMatches    *prometheus.CounterVec
	identityMisses     *prometheus.CounterVec
	unmatchedNames     prometheus.Gauge
	aggregationLatency prometheus.Histogram

	// Snapshot
	snapshotGeneration     prometheus.Gauge
	snapshotRosterEntries  prometheus.Gauge
	snapshotRecords        prometheus.Gauge
	snapshotReloadDuration prometheus.Histogram
	snapshotReloadFailures prometheus.Counter
	snapshotLastUnix       prometheus.Gauge

	// Batch pipeline
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueRejected    *prometheus.CounterVec
	workerCount      prometheus.Gauge
	workerJobs       prometheus.Counter
	workerJobLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     *prometheus.CounterVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "dueline",
		subsystem:        "engine",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.resolutions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "resolutions_total",
		Help: "Predictions produced, by data tier and role",
	}, []string{"tier", "role"})

	m.strategyMatches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "identity_strategy_matches_total",
		Help: "Accepted identity matches, by stage (roster/daily) and strategy",
	}, []string{"stage", "strategy"})

	m.identityMisses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "identity_misses_total",
		Help: "Identity resolutions that fell through every strategy, by stage",
	}, []string{"stage"})

	m.unmatchedNames = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "unmatched_names",
		Help: "Distinct requested names that failed resolution against the current snapshot",
	})

	m.aggregationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "aggregation_latency_milliseconds",
		Help:    "Time to produce one prediction",
		Buckets: m.histogramBuckets,
	})

	m.snapshotGeneration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "snapshot_generation",
		Help: "Generation counter of the published corpus snapshot",
	})

	m.snapshotRosterEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "snapshot_roster_entries",
		Help: "Roster entries in the published snapshot",
	})

	m.snapshotRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "snapshot_game_records",
		Help: "Daily game records in the published snapshot",
	})

	m.snapshotReloadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "snapshot_reload_duration_milliseconds",
		Help:    "Time to load and publish a corpus snapshot",
		Buckets: []float64{1, 5, 10, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	m.snapshotReloadFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "snapshot_reload_failures_total",
		Help: "Corpus reloads that failed and left the previous snapshot in place",
	})

	m.snapshotLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "snapshot_last_published_unix",
		Help: "Unix time of the last snapshot publication",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_size",
		Help: "Analysis jobs waiting in the batch queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_capacity",
		Help: "Capacity of the batch queue",
	})

	m.queueRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_rejected_total",
		Help: "Jobs refused by the batch queue, by reason",
	}, []string{"reason"})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_count",
		Help: "Workers in the batch pool",
	})

	m.workerJobs = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_jobs_total",
		Help: "Jobs completed by the batch pool",
	})

	m.workerJobLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "worker_job_latency_milliseconds",
		Help:    "Time from dequeue to reply for one job",
		Buckets: m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRateLimited = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_rate_limited_total",
		Help: "Requests rejected by the rate limiter, by endpoint",
	}, []string{"endpoint"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "errors_total",
		Help: "Errors by component and type",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_memory_usage_bytes",
		Help: "Heap bytes allocated",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_goroutine_count",
		Help: "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "system_gc_pause_time_milliseconds",
		Help:    "Average GC pause time in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordResolution counts one prediction produced from the given tier.
func RecordResolution(tier, role string) {
	globalManager.resolutions.WithLabelValues(tier, role).Inc()
}

// RecordStrategyMatch counts an accepted identity match.
func RecordStrategyMatch(stage, strategy string) {
	globalManager.strategyMatches.WithLabelValues(stage, strategy).Inc()
}

// RecordIdentityMiss counts a resolution that no strategy accepted.
func RecordIdentityMiss(stage string) {
	globalManager.identityMisses.WithLabelValues(stage).Inc()
}

// UpdateUnmatchedNames sets the distinct unmatched name count.
func UpdateUnmatchedNames(count int64) {
	globalManager.unmatchedNames.Set(float64(count))
}

// RecordAggregationLatency records the time spent on one prediction.
func RecordAggregationLatency(latencyMs float64) {
	globalManager.aggregationLatency.Observe(latencyMs)
}

// Snapshot Metrics Functions.

// RecordSnapshotPublished updates every snapshot gauge after a swap.
func RecordSnapshotPublished(generation uint64, rosterEntries, records int, unix float64) {
	globalManager.snapshotGeneration.Set(float64(generation))
	globalManager.snapshotRosterEntries.Set(float64(rosterEntries))
	globalManager.snapshotRecords.Set(float64(records))
	globalManager.snapshotLastUnix.Set(unix)
}

// RecordSnapshotReloadDuration records how long a reload took.
func RecordSnapshotReloadDuration(ms float64) {
	globalManager.snapshotReloadDuration.Observe(ms)
}

// RecordSnapshotReloadFailure counts a failed reload.
func RecordSnapshotReloadFailure() {
	globalManager.snapshotReloadFailures.Inc()
}

// Batch Pipeline Metrics Functions.

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueRejected counts a refused enqueue.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the pool size.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerJob counts a completed job and its latency.
func RecordWorkerJob(latencyMs float64) {
	globalManager.workerJobs.Inc()
	globalManager.workerJobLatency.Observe(latencyMs)
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited counts a request refused by the limiter.
func RecordRateLimited(endpoint string) {
	globalManager.httpRateLimited.WithLabelValues(endpoint).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System Metrics Functions.

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
