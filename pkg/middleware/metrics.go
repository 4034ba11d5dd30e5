package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/hydrate/pkg/features/resource"
	"github.com/vango-dev/hydrate/pkg/hydrate"
	"github.com/vango-dev/hydrate/pkg/serverfn"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "hydrate").
	Namespace string

	Subsystem   string
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry defaults to prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "hydrate",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics collects gateway, resource, hydration and page render metrics.
// It implements resource.Observer and hydrate.Observer, and its
// Interceptor method instruments server functions.
//
// Metrics:
//   - hydrate_serverfn_calls_total{function,side,status}
//   - hydrate_serverfn_call_duration_seconds{function,side}
//   - hydrate_serverfn_errors_total{function,side,kind}
//   - hydrate_resource_settlements_total{resource,phase}
//   - hydrate_resource_load_duration_seconds{resource}
//   - hydrate_resource_stale_total{resource}
//   - hydrate_resource_disposed_total
//   - hydrate_hydration_seeds_total{outcome}
//   - hydrate_hydration_mismatches_total{kind}
//   - hydrate_page_renders_total{status}
//   - hydrate_page_render_duration_seconds
type Metrics struct {
	callsTotal    *prometheus.CounterVec
	callDuration  *prometheus.HistogramVec
	callErrors    *prometheus.CounterVec
	settlements   *prometheus.CounterVec
	loadDuration  *prometheus.HistogramVec
	staleTotal    *prometheus.CounterVec
	disposedTotal prometheus.Counter
	seedsTotal    *prometheus.CounterVec
	mismatches    *prometheus.CounterVec
	rendersTotal  *prometheus.CounterVec
	renderLatency prometheus.Histogram
}

// NewMetrics registers the metrics. Registering twice on the same
// registry panics, so create one Metrics per registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}
	histogram := func(name, help string, labels ...string) *prometheus.HistogramVec {
		return factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, labels)
	}

	return &Metrics{
		callsTotal:   counter("serverfn_calls_total", "Server function invocations", "function", "side", "status"),
		callDuration: histogram("serverfn_call_duration_seconds", "Server function invocation duration in seconds", "function", "side"),
		callErrors:   counter("serverfn_errors_total", "Failed server function invocations by kind", "function", "side", "kind"),
		settlements:  counter("resource_settlements_total", "Applied resource settlements by phase", "resource", "phase"),
		loadDuration: histogram("resource_load_duration_seconds", "Time from generation start to settlement in seconds", "resource"),
		staleTotal:   counter("resource_stale_total", "Settlements dropped because the generation was superseded", "resource"),
		disposedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resource_disposed_total",
			Help:        "Disposed resources",
			ConstLabels: config.ConstLabels,
		}),
		seedsTotal:   counter("hydration_seeds_total", "Resources seeded from the hydration payload", "outcome"),
		mismatches:   counter("hydration_mismatches_total", "Hydration failures by kind", "kind"),
		rendersTotal: counter("page_renders_total", "Server page renders", "status"),
		renderLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "page_render_duration_seconds",
			Help:        "Server page render duration in seconds, including boundary waits",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

// Interceptor returns a serverfn interceptor recording call counts,
// durations and failures.
func (m *Metrics) Interceptor() serverfn.Interceptor {
	return func(ctx context.Context, call serverfn.Call, next serverfn.Invoker) error {
		side := call.Side.String()
		start := time.Now()
		err := next(ctx)
		m.callDuration.WithLabelValues(call.Name, side).Observe(time.Since(start).Seconds())

		status := "success"
		if err != nil {
			status = "error"
			m.callErrors.WithLabelValues(call.Name, side, errorKind(err)).Inc()
		}
		m.callsTotal.WithLabelValues(call.Name, side, status).Inc()
		return err
	}
}

// errorKind keeps the label set small: the gateway error kind, or
// "internal" for anything else.
func errorKind(err error) string {
	var ferr *serverfn.Error
	if errors.As(err, &ferr) {
		return ferr.Kind.String()
	}
	return "internal"
}

// Settled implements resource.Observer.
func (m *Metrics) Settled(name string, phase resource.Phase, elapsed time.Duration) {
	m.settlements.WithLabelValues(name, phase.String()).Inc()
	m.loadDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// Stale implements resource.Observer.
func (m *Metrics) Stale(name string) {
	m.staleTotal.WithLabelValues(name).Inc()
}

// Disposed implements resource.Observer.
func (m *Metrics) Disposed(string) {
	m.disposedTotal.Inc()
}

// Seeded implements hydrate.Observer.
func (m *Metrics) Seeded(_ uint64, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.seedsTotal.WithLabelValues(outcome).Inc()
}

// Mismatched implements hydrate.Observer.
func (m *Metrics) Mismatched(err *hydrate.HydrationError) {
	m.mismatches.WithLabelValues(err.Kind.String()).Inc()
}

// RecordRender records one server page render.
func (m *Metrics) RecordRender(elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.rendersTotal.WithLabelValues(status).Inc()
	m.renderLatency.Observe(elapsed.Seconds())
}

var (
	_ resource.Observer = (*Metrics)(nil)
	_ hydrate.Observer  = (*Metrics)(nil)
)
