// Package metrics exposes Prometheus instrumentation for the analysis
// pipeline and the HTTP surface.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metrics for the application.
type Registry struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Resolution metrics
	ResolutionsTotal    *prometheus.CounterVec
	ResolutionDuration  prometheus.Histogram
	ResolutionFiles     prometheus.Histogram
	MalformedFilesTotal prometheus.Counter
	GraphNodesTotal     *prometheus.GaugeVec
	GraphEdgesTotal     *prometheus.GaugeVec

	// Layout metrics
	LayoutRunsTotal        *prometheus.CounterVec
	LayoutDuration         *prometheus.HistogramVec
	LayoutSteps            prometheus.Histogram
	LayoutTruncationsTotal prometheus.Counter

	// Session metrics
	SessionsActive         prometheus.Gauge
	InteractionEventsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a metrics registry with all metrics initialized.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{registry: reg}

	r.initHTTPMetrics()
	r.initResolutionMetrics()
	r.initLayoutMetrics()
	r.initSessionMetrics()

	return r
}

// PrometheusRegistry returns the underlying Prometheus registry for the
// /metrics handler.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeatlas_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codeatlas_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "codeatlas_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)
}

func (r *Registry) initResolutionMetrics() {
	r.ResolutionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeatlas_resolutions_total",
			Help: "Total number of structural record resolutions",
		},
		[]string{"status"},
	)

	r.ResolutionDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "codeatlas_resolution_duration_seconds",
			Help:    "Time spent resolving a structural record into a graph",
			Buckets: prometheus.DefBuckets,
		},
	)

	r.ResolutionFiles = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "codeatlas_resolution_files",
			Help:    "File count per resolved structural record",
			Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000},
		},
	)

	r.MalformedFilesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "codeatlas_malformed_files_total",
			Help: "Files whose structural record failed to decode",
		},
	)

	r.GraphNodesTotal = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "codeatlas_graph_nodes",
			Help: "Node count of the most recently resolved graph",
		},
		[]string{"kind"},
	)

	r.GraphEdgesTotal = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "codeatlas_graph_edges",
			Help: "Edge count of the most recently resolved graph",
		},
		[]string{"relation"},
	)
}

func (r *Registry) initLayoutMetrics() {
	r.LayoutRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeatlas_layout_runs_total",
			Help: "Layout computations by view",
		},
		[]string{"view"},
	)

	r.LayoutDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codeatlas_layout_duration_seconds",
			Help:    "Layout computation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"view"},
	)

	r.LayoutSteps = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "codeatlas_layout_steps",
			Help:    "Simulation steps until convergence or truncation",
			Buckets: []float64{10, 50, 100, 200, 300, 500, 1000},
		},
	)

	r.LayoutTruncationsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "codeatlas_layout_truncations_total",
			Help: "Simulations stopped at the step cap before convergence",
		},
	)
}

func (r *Registry) initSessionMetrics() {
	r.SessionsActive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "codeatlas_sessions_active",
			Help: "Currently held analysis sessions",
		},
	)

	r.InteractionEventsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeatlas_interaction_events_total",
			Help: "Interaction events by type",
		},
		[]string{"event"},
	)
}

// RecordHTTPRequest records an HTTP request with its duration.
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordResolution records one structural record resolution.
func (r *Registry) RecordResolution(status string, files int, duration time.Duration) {
	r.ResolutionsTotal.WithLabelValues(status).Inc()
	if status == "ok" {
		r.ResolutionDuration.Observe(duration.Seconds())
		r.ResolutionFiles.Observe(float64(files))
	}
}

// RecordLayout records one layout computation.
func (r *Registry) RecordLayout(view string, steps int, converged bool, duration time.Duration) {
	r.LayoutRunsTotal.WithLabelValues(view).Inc()
	r.LayoutDuration.WithLabelValues(view).Observe(duration.Seconds())
	if steps > 0 {
		r.LayoutSteps.Observe(float64(steps))
	}
	if !converged && steps > 0 {
		r.LayoutTruncationsTotal.Inc()
	}
}

// RecordInteraction counts one interaction event.
func (r *Registry) RecordInteraction(event string) {
	r.InteractionEventsTotal.WithLabelValues(event).Inc()
}
