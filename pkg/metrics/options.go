package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Bounds of the derived latency buckets, in milliseconds.
const (
	minLatencyBucket = 5
	latencyBuckets   = 10
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithLatencyCeiling spreads the latency histogram buckets exponentially up
// to ceilingMs, normally the upstream request timeout. Latencies past the
// timeout never happen, so buckets above it would stay empty.
func WithLatencyCeiling(ceilingMs float64) Option {
	return func(m *Manager) {
		if ceilingMs > minLatencyBucket {
			m.histogramBuckets = prometheus.ExponentialBucketsRange(minLatencyBucket, ceilingMs, latencyBuckets)
		}
	}
}

// WithRegistry registers the collectors on registry instead of a fresh one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
