package observability

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hr_portal/internal/storage"
)

// MetricsConfig holds configuration for Prometheus metrics middleware
type MetricsConfig struct {
	Logger *slog.Logger

	// Registry collectors are registered with. Default: a fresh registry
	// with Go and process collectors.
	Registry *prometheus.Registry

	// Namespace for metrics (e.g., "hr_portal")
	Namespace string

	// Buckets for response time histogram
	Buckets []float64

	// SkipPaths defines paths that should not be metered
	SkipPaths []string
}

// DefaultMetricsConfig returns a default metrics configuration
func DefaultMetricsConfig(namespace string) *MetricsConfig {
	return &MetricsConfig{
		Namespace: namespace,
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		SkipPaths: []string{"/metrics", "/health/live", "/health/ready"},
	}
}

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Metrics holds the HTTP and shell collectors.
type Metrics struct {
	registry  *prometheus.Registry
	skipPaths map[string]struct{}
	logger    *slog.Logger

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeRequests  prometheus.Gauge

	sidebarToggles  *prometheus.CounterVec
	logouts         *prometheus.CounterVec
	unmatchedRoutes prometheus.Counter
}

// NewMetrics creates and registers Prometheus metrics
func NewMetrics(config *MetricsConfig) *Metrics {
	if config == nil {
		config = DefaultMetricsConfig("hr_portal")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reg := config.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	factory := promauto.With(reg)

	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	logger.Info("initializing prometheus metrics", "namespace", config.Namespace)

	return &Metrics{
		registry:  reg,
		skipPaths: skip,
		logger:    logger,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: config.Namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   config.Buckets,
			},
			[]string{"method", "route"},
		),
		activeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Subsystem: "http",
			Name:      "requests_active",
			Help:      "Number of in-flight HTTP requests",
		}),
		sidebarToggles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Subsystem: "shell",
				Name:      "sidebar_toggles_total",
				Help:      "Sidebar toggles by resulting state",
			},
			[]string{"state"},
		),
		logouts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Subsystem: "shell",
				Name:      "logouts_total",
				Help:      "Logouts by token removal outcome",
			},
			[]string{"outcome"},
		),
		unmatchedRoutes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: "shell",
			Name:      "unmatched_routes_total",
			Help:      "Shell renders whose path matched no navigation entry",
		}),
	}
}

// Middleware records request count and latency. Requests are labelled by
// their mux pattern rather than raw path to bound cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, skip := m.skipPaths[r.URL.Path]; skip {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		m.activeRequests.Inc()
		defer m.activeRequests.Dec()

		rw := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SidebarToggled, LoggedOut and UnmatchedRoute let Metrics record shell events.

func (m *Metrics) SidebarToggled(collapsed bool) {
	state := "expanded"
	if collapsed {
		state = "collapsed"
	}
	m.sidebarToggles.WithLabelValues(state).Inc()
}

func (m *Metrics) LoggedOut(err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrClosed):
		outcome = "store_closed"
	default:
		outcome = "store_error"
	}
	m.logouts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) UnmatchedRoute(string) {
	m.unmatchedRoutes.Inc()
}

type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
