// Package metrics provides the Prometheus collectors shared by every service.
// All recording methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portfolio_tracker"

// Metrics groups the collectors recorded by caches, price sources and handlers.
type Metrics struct {
	// CacheLookups counts price cache lookups by backend and result (hit/miss).
	CacheLookups *prometheus.CounterVec
	// SourceFetches counts price source fetches by source and result (ok/error).
	SourceFetches *prometheus.CounterVec
	// RepricedInvestments counts investments updated by the reprice task.
	RepricedInvestments prometheus.Counter
	// NotificationFailures counts portfolio value notifications that were not delivered.
	NotificationFailures prometheus.Counter
	// HTTPRequestDuration observes request latency per route.
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "price_cache",
			Name:      "lookups_total",
			Help:      "Price cache lookups by backend and result",
		}, []string{"backend", "result"}),
		SourceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "price_source",
			Name:      "fetches_total",
			Help:      "Price source fetches by source and result",
		}, []string{"source", "result"}),
		RepricedInvestments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reprice",
			Name:      "investments_updated_total",
			Help:      "Investments revalued by the reprice task",
		}),
		NotificationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reprice",
			Name:      "notification_failures_total",
			Help:      "Portfolio value notifications that could not be delivered",
		}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "method", "route", "status"}),
	}
	reg.MustRegister(
		m.CacheLookups,
		m.SourceFetches,
		m.RepricedInvestments,
		m.NotificationFailures,
		m.HTTPRequestDuration,
	)
	return m
}

// CacheLookup records count lookups with the given result for a cache backend.
func (m *Metrics) CacheLookup(backend string, hit bool, count int) {
	if m == nil || count <= 0 {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(backend, result).Add(float64(count))
}

// SourceFetch records one fetch attempt against a price source.
func (m *Metrics) SourceFetch(source string, ok bool) {
	if m == nil {
		return
	}
	result := "error"
	if ok {
		result = "ok"
	}
	m.SourceFetches.WithLabelValues(source, result).Inc()
}

// Repriced records n revalued investments.
func (m *Metrics) Repriced(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RepricedInvestments.Add(float64(n))
}

// NotificationFailed records an undelivered portfolio notification.
func (m *Metrics) NotificationFailed() {
	if m == nil {
		return
	}
	m.NotificationFailures.Inc()
}

// Middleware observes the latency of every request handled by the engine.
func (m *Metrics) Middleware(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestDuration.
			WithLabelValues(service, c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the gathered metrics in the Prometheus text format.
func Handler(g prometheus.Gatherer) gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
