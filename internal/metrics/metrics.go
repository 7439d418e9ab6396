// Package metrics holds the Prometheus collectors of lifehub.
//
// Collectors live on an explicit registry so tests and multiple app
// instances never collide on the global one. Every method is nil-safe:
// a nil *Metrics records nothing.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
)

type Metrics struct {
	registry *prometheus.Registry

	storeOps     *prometheus.CounterVec
	searches     *prometheus.CounterVec
	flushes      *prometheus.CounterVec
	httpReqs     *prometheus.CounterVec
	httpLat      *prometheus.HistogramVec
	catalogItems *prometheus.GaugeVec
}

// New builds and registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lifehub_store_operations_total",
			Help: "Store operations by kind, operation and outcome.",
		}, []string{"kind", "op", "outcome"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lifehub_searches_total",
			Help: "Searches by kind and outcome.",
		}, []string{"kind", "outcome"}),
		flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lifehub_projection_flushes_total",
			Help: "Projection writes to durable storage by kind and outcome.",
		}, []string{"kind", "outcome"}),
		httpReqs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lifehub_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpLat: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lifehub_http_request_duration_seconds",
			Help:    "HTTP request duration by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		catalogItems: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lifehub_catalog_items",
			Help: "Items currently loaded per kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		m.storeOps, m.searches, m.flushes, m.httpReqs, m.httpLat, m.catalogItems,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Outcome classifies an error into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "conflict"
	case errors.Is(err, domain.ErrSuperseded):
		return "superseded"
	default:
		return "error"
	}
}

func (m *Metrics) StoreOp(kind domain.Kind, op string, err error) {
	if m == nil {
		return
	}
	m.storeOps.WithLabelValues(string(kind), op, Outcome(err)).Inc()
}

func (m *Metrics) Search(kind domain.Kind, err error) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(string(kind), Outcome(err)).Inc()
}

func (m *Metrics) Flush(kind domain.Kind, err error) {
	if m == nil {
		return
	}
	m.flushes.WithLabelValues(string(kind), Outcome(err)).Inc()
}

func (m *Metrics) CatalogSize(kind domain.Kind, n int) {
	if m == nil {
		return
	}
	m.catalogItems.WithLabelValues(string(kind)).Set(float64(n))
}

func (m *Metrics) HTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpReqs.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLat.WithLabelValues(method, route).Observe(d.Seconds())
}

// Registry exposes the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
