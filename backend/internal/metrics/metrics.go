package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics for the service. A nil *Collector is
// valid and records nothing, which keeps tests and the CLI free of registries.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	GraphQueries  *prometheus.CounterVec
	GraphDuration *prometheus.HistogramVec
	BreakerState  prometheus.Gauge

	DrawingWrites *prometheus.CounterVec
}

// NewCollector creates a collector backed by its own registry.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		GraphQueries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_queries_total",
				Help:      "Cypher statements executed through the gateway",
			},
			[]string{"operation", "outcome"},
		),
		GraphDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "graph_query_duration_seconds",
				Help:      "Gateway query latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		BreakerState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_breaker_open",
				Help:      "1 while the graph circuit breaker is open",
			},
		),
		DrawingWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "drawing_writes_total",
				Help:      "Drawing saves and updates by outcome",
			},
			[]string{"kind", "outcome"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.GraphQueries,
		c.GraphDuration,
		c.BreakerState,
		c.DrawingWrites,
		collectors.NewGoCollector(),
	)
	return c
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveHTTP records one served request.
func (c *Collector) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveQuery records one gateway call.
func (c *Collector) ObserveQuery(operation string, err error, elapsed time.Duration) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.GraphQueries.WithLabelValues(operation, outcome).Inc()
	c.GraphDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// SetBreakerOpen flips the breaker gauge.
func (c *Collector) SetBreakerOpen(open bool) {
	if c == nil {
		return
	}
	if open {
		c.BreakerState.Set(1)
		return
	}
	c.BreakerState.Set(0)
}

// ObserveDrawingWrite records a drawing save ("insert") or update.
func (c *Collector) ObserveDrawingWrite(kind string, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.DrawingWrites.WithLabelValues(kind, outcome).Inc()
}
