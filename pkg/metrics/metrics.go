// Package metrics exposes the Prometheus metrics of the rules API.
//
// Metrics:
//   - codingrules_http_requests_total: requests by method, route and status
//   - codingrules_http_request_duration_seconds: request latency by method and route
//   - codingrules_search_duration_seconds: rule search latency including facets
//   - codingrules_search_results: matching rules per search
//   - codingrules_catalog_rules: rules in the store
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "codingrules"

type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	searchDuration  prometheus.Histogram
	searchResults   prometheus.Histogram
	catalogRules    prometheus.Gauge
}

// NewCollector registers all metrics with registry. A nil registry gets a
// fresh one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled",
			},
			[]string{"method", "route", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"method", "route"},
		),

		searchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "search",
				Name:      "duration_seconds",
				Help:      "Duration of rule searches including facet counts",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
			},
		),

		searchResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "search",
				Name:      "results",
				Help:      "Number of rules matching a search",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8), // 1 to 16K
			},
		),

		catalogRules: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "catalog",
				Name:      "rules",
				Help:      "Number of rules in the store",
			},
		),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.searchDuration,
		c.searchResults,
		c.catalogRules,
	)

	return c
}

// RecordRequest records one handled request. route is the matched route
// pattern, not the raw path, to bound label cardinality.
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordSearch(duration time.Duration, total int64) {
	c.searchDuration.Observe(duration.Seconds())
	c.searchResults.Observe(float64(total))
}

func (c *Collector) SetCatalogRules(count int64) {
	c.catalogRules.Set(float64(count))
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
