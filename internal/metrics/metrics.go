// Package metrics owns the Prometheus collectors exported at /metrics.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	CacheLookups      *prometheus.CounterVec
	CacheWrites       prometheus.Counter
	CacheEvictions    *prometheus.CounterVec
	CacheAdminActions *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them, plus the Go and process
// collectors, on a fresh registry.
func New() (*Metrics, error) {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests processed, by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reading_cache_lookups_total",
			Help: "Reading cache lookups by result (hit|miss|error).",
		}, []string{"result"}),
		CacheWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reading_cache_writes_total",
			Help: "Readings written to the cache.",
		}),
		CacheEvictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reading_cache_evictions_total",
			Help: "Entries removed from the reading cache, by cause.",
		}, []string{"cause"}),
		CacheAdminActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reading_cache_admin_actions_total",
			Help: "Cache administration operations executed, by action.",
		}, []string{"action", "dry_run"}),
		gatherer: reg,
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests, m.HTTPDuration,
		m.CacheLookups, m.CacheWrites, m.CacheEvictions, m.CacheAdminActions,
	} {
		if err := register(reg, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func register(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}

// The helpers below are nil-safe so components can run without metrics.

func (m *Metrics) CacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) CacheWrite() {
	if m != nil {
		m.CacheWrites.Inc()
	}
}

func (m *Metrics) CacheEvicted(cause string, n int) {
	if m != nil && n > 0 {
		m.CacheEvictions.WithLabelValues(cause).Add(float64(n))
	}
}

func (m *Metrics) CacheAdminAction(action string, dryRun bool) {
	if m != nil {
		dr := "false"
		if dryRun {
			dr = "true"
		}
		m.CacheAdminActions.WithLabelValues(action, dr).Inc()
	}
}
