// Package metrics provides Prometheus metrics for the gamegraph service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by upstream and fan-out metrics.
const (
	OutcomeOK        = "ok"
	OutcomeForbidden = "forbidden"
	OutcomeHidden    = "hidden"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
	OutcomeTimeout   = "timeout"
)

// Manager owns every collector registered by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Upstream catalog calls
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	// Fan-out
	fanoutTasks    *prometheus.CounterVec
	fanoutInFlight prometheus.Gauge
	fanoutPanics   prometheus.Counter

	// Engine
	componentDuration *prometheus.HistogramVec
	probeFailOpen     prometheus.Counter
	hiddenResults     *prometheus.CounterVec
	friendsRequested  prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager = NewManager() //nolint:gochecknoglobals // singleton metrics manager

// Init replaces the global manager with one built from opts. It must run
// before any handler captures GetRegistry, i.e. before routes are registered.
func Init(opts ...Option) {
	globalManager = NewManager(opts...)
}

// NewManager creates a new metrics manager with default configuration and
// its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gamegraph",
		subsystem:        "engine",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.upstreamRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_requests_total",
		Help:      "Catalog API requests by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	m.upstreamLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_latency_milliseconds",
		Help:      "Catalog API request latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint"})

	m.fanoutTasks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fanout_tasks_total",
		Help:      "Fan-out tasks by component and outcome",
	}, []string{"component", "outcome"})

	m.fanoutInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fanout_in_flight",
		Help:      "Fan-out tasks currently holding a pool slot",
	})

	m.fanoutPanics = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fanout_panics_total",
		Help:      "Fan-out tasks that panicked and were recovered",
	})

	m.componentDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "component_duration_milliseconds",
		Help:      "Wall time of one engine component invocation",
		Buckets:   m.histogramBuckets,
	}, []string{"component"})

	m.probeFailOpen = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "achievement_probe_fail_open_total",
		Help:      "Visibility probes that failed for a non-forbidden reason and were ignored",
	})

	m.hiddenResults = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "hidden_results_total",
		Help:      "Results short-circuited by a visibility restriction",
	}, []string{"kind"})

	m.friendsRequested = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "friend_list_size",
		Help:      "Number of friends fanned out per request",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Total number of errors by endpoint",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Heap bytes allocated",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordUpstreamRequest counts one catalog call and its latency.
func RecordUpstreamRequest(endpoint, outcome string, latencyMs float64) {
	globalManager.upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	globalManager.upstreamLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// RecordFanoutTask counts a finished fan-out task.
func RecordFanoutTask(component, outcome string) {
	globalManager.fanoutTasks.WithLabelValues(component, outcome).Inc()
}

// IncFanoutInFlight marks a task as started.
func IncFanoutInFlight() { globalManager.fanoutInFlight.Inc() }

// DecFanoutInFlight marks a task as finished.
func DecFanoutInFlight() { globalManager.fanoutInFlight.Dec() }

// RecordFanoutPanic counts a recovered panic.
func RecordFanoutPanic() { globalManager.fanoutPanics.Inc() }

// RecordComponentDuration observes one component invocation.
func RecordComponentDuration(component string, durationMs float64) {
	globalManager.componentDuration.WithLabelValues(component).Observe(durationMs)
}

// RecordProbeFailOpen counts a swallowed visibility probe error.
func RecordProbeFailOpen() { globalManager.probeFailOpen.Inc() }

// RecordHidden counts a visibility short-circuit ("achievements", "friend_list").
func RecordHidden(kind string) {
	globalManager.hiddenResults.WithLabelValues(kind).Inc()
}

// ObserveFriendListSize records how wide a friend fan-out was.
func ObserveFriendListSize(n int) {
	globalManager.friendsRequested.Observe(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry the global manager records into.
func GetRegistry() *prometheus.Registry {
	return globalManager.registry
}
