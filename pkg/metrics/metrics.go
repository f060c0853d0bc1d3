// Package metrics collects Prometheus metrics for the synchronization core.
//
// A Metrics value is built once per process and handed to the coordinators,
// the offline cache and the live feed. Every recorder is safe to call on a
// nil *Metrics, so instrumented components work without metrics in tests.
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(metrics.WithRegistry(reg), metrics.WithNamespace("kickers"))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "kickers").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for mutation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "kickers",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors.
type Metrics struct {
	mutations        *prometheus.CounterVec
	mutationDuration *prometheus.HistogramVec
	resyncs          *prometheus.CounterVec
	fetches          *prometheus.CounterVec
	revalidations    *prometheus.CounterVec
	installs         *prometheus.CounterVec
	dropped          prometheus.Counter
	liveClients      prometheus.Gauge
}

// New registers the collectors and returns them.
//
// Metrics collected:
//   - kickers_mutations_total: optimistic mutations by action and outcome
//   - kickers_mutation_duration_seconds: time from patch to settlement
//   - kickers_resyncs_total: full resynchronizations by status
//   - kickers_cache_fetches_total: intercepted requests by source
//   - kickers_cache_revalidations_total: background refreshes by status
//   - kickers_cache_installs_total: install attempts by status
//   - kickers_cache_generations_dropped_total: generations purged on activate
//   - kickers_live_clients: connected live-feed clients
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mutations_total",
			Help:        "Total number of optimistic mutations by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"action", "outcome"}),

		mutationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mutation_duration_seconds",
			Help:        "Time from optimistic patch to settlement in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"action"}),

		resyncs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resyncs_total",
			Help:        "Total number of full resynchronizations",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cache_fetches_total",
			Help:        "Total number of intercepted requests by response source",
			ConstLabels: config.ConstLabels,
		}, []string{"source"}),

		revalidations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cache_revalidations_total",
			Help:        "Total number of background cache refreshes by status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		installs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cache_installs_total",
			Help:        "Total number of cache generation installs by status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		dropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cache_generations_dropped_total",
			Help:        "Total number of stale cache generations deleted on activation",
			ConstLabels: config.ConstLabels,
		}),

		liveClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_clients",
			Help:        "Number of connected live-feed clients",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// =============================================================================
// Recorders
// =============================================================================

// RecordMutation records one settled mutation.
func (m *Metrics) RecordMutation(action, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(action, outcome).Inc()
	m.mutationDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}

// RecordResync records a full resynchronization.
func (m *Metrics) RecordResync(err error) {
	if m == nil {
		return
	}
	m.resyncs.WithLabelValues(status(err)).Inc()
}

// RecordFetch records which source answered an intercepted request.
func (m *Metrics) RecordFetch(source string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(source).Inc()
}

// RecordRevalidation records a background refresh ("stored", "skipped", "failed").
func (m *Metrics) RecordRevalidation(status string) {
	if m == nil {
		return
	}
	m.revalidations.WithLabelValues(status).Inc()
}

// RecordInstall records an install attempt.
func (m *Metrics) RecordInstall(err error) {
	if m == nil {
		return
	}
	m.installs.WithLabelValues(status(err)).Inc()
}

// RecordDropped records generations deleted on activation.
func (m *Metrics) RecordDropped(n int) {
	if m == nil {
		return
	}
	m.dropped.Add(float64(n))
}

// LiveClientConnected records a live-feed connection.
func (m *Metrics) LiveClientConnected() {
	if m == nil {
		return
	}
	m.liveClients.Inc()
}

// LiveClientDisconnected records a live-feed disconnection.
func (m *Metrics) LiveClientDisconnected() {
	if m == nil {
		return
	}
	m.liveClients.Dec()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
