// Package metrics exposes Prometheus metrics for the HTTP runtime.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rsc"

// Metrics holds the collectors of one server.
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	InFlightGauge   prometheus.Gauge
	RenderErrors    *prometheus.CounterVec
	ReloadClients   prometheus.GaugeFunc
}

// New creates the collectors on a fresh registry. clients reports the number
// of connected reload clients and may be nil.
func New(clients func() int) *Metrics {
	reg := prometheus.NewRegistry()
	if clients == nil {
		clients = func() int { return 0 }
	}

	m := &Metrics{
		registry: reg,
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status_code"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status_code"}),
		InFlightGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of HTTP requests currently being processed.",
		}),
		RenderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "errors_total",
			Help:      "Pages whose render returned an error.",
		}, []string{"route"}),
		ReloadClients: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reload",
			Name:      "clients",
			Help:      "Connected live-reload clients.",
		}, func() float64 { return float64(clients()) }),
	}

	reg.MustRegister(
		m.RequestDuration,
		m.RequestsTotal,
		m.InFlightGauge,
		m.RenderErrors,
		m.ReloadClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Gatherer(), promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Middleware records request metrics, labelled by chi route pattern. Paths
// in skip are passed through untouched.
func (m *Metrics) Middleware(skip ...string) func(http.Handler) http.Handler {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skipped[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			m.InFlightGauge.Inc()
			defer m.InFlightGauge.Dec()

			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := Route(r)
			code := strconv.Itoa(status)
			m.RequestDuration.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())
			m.RequestsTotal.WithLabelValues(r.Method, route, code).Inc()
		})
	}
}

// RenderFailed counts a page render error for the request's route.
func (m *Metrics) RenderFailed(r *http.Request) {
	m.RenderErrors.WithLabelValues(Route(r)).Inc()
}

// Route returns the matched chi route pattern, or "unmatched".
func Route(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
