// Package metrics exports reconciler activity to Prometheus.
//
// A Metrics value is a fiber.Observer; hand it to fiber.WithObserver (one
// Metrics can observe many reconcilers) and mount Handler at /metrics.
//
// Metrics collected, with the default namespace:
//   - loom_slices_total: slices run
//   - loom_slice_units: histogram of work units per slice
//   - loom_slice_duration_seconds: histogram of slice wall time
//   - loom_commits_total: committed work trees
//   - loom_commit_duration_seconds: histogram of commit wall time
//   - loom_commit_effects_total: host effects applied, by effect
//   - loom_failures_total: failed renders, by error code
//   - loom_active_sessions: open live sessions
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	lerrors "github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/fiber"
)

// Config configures the Prometheus metrics.
type Config struct {
	// Namespace is the metrics namespace (default: "loom").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: buckets from 100µs to ~1.6s.
	Buckets []float64

	// Registry receives the collectors and serves Handler.
	// Default: a fresh registry.
	Registry *prometheus.Registry
}

// Option configures the Prometheus metrics.
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

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "loom",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15),
	}
}

// Metrics holds the collectors. It implements fiber.Observer and is safe
// for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	slices         prometheus.Counter
	sliceUnits     prometheus.Histogram
	sliceDuration  prometheus.Histogram
	commits        prometheus.Counter
	commitDuration prometheus.Histogram
	effects        *prometheus.CounterVec
	failures       *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

var _ fiber.Observer = (*Metrics)(nil)

// New registers the collectors.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		registry: config.Registry,

		slices: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "slices_total",
			Help:        "Total number of scheduler slices run",
			ConstLabels: config.ConstLabels,
		}),

		sliceUnits: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "slice_units",
			Help:        "Fibers processed per slice",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 2, 12),
		}),

		sliceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "slice_duration_seconds",
			Help:        "Slice wall time in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		commits: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commits_total",
			Help:        "Total number of committed work trees",
			ConstLabels: config.ConstLabels,
		}),

		commitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commit_duration_seconds",
			Help:        "Commit wall time in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		effects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commit_effects_total",
			Help:        "Host effects applied by commits",
			ConstLabels: config.ConstLabels,
		}, []string{"effect"}),

		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "failures_total",
			Help:        "Failed renders by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of open live sessions",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// SliceDone implements fiber.Observer.
func (m *Metrics) SliceDone(s fiber.SliceStats) {
	m.slices.Inc()
	m.sliceUnits.Observe(float64(s.Units))
	m.sliceDuration.Observe(s.Duration.Seconds())
}

// Committed implements fiber.Observer.
func (m *Metrics) Committed(s fiber.CommitStats) {
	m.commits.Inc()
	m.commitDuration.Observe(s.Duration.Seconds())
	m.effects.WithLabelValues("place").Add(float64(s.Placed))
	m.effects.WithLabelValues("update").Add(float64(s.Updated))
	m.effects.WithLabelValues("delete").Add(float64(s.Deleted))
}

// Failed implements fiber.Observer.
func (m *Metrics) Failed(err error) {
	code := "unknown"
	var le *lerrors.LoomError
	if errors.As(err, &le) && le.Code != "" {
		code = le.Code
	}
	m.failures.WithLabelValues(code).Inc()
}

// SessionOpened counts a new live session.
func (m *Metrics) SessionOpened() {
	m.activeSessions.Inc()
}

// SessionClosed uncounts a live session.
func (m *Metrics) SessionClosed() {
	m.activeSessions.Dec()
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
