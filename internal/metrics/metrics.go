// Package metrics exposes polling statistics in Prometheus format.
//
// A [Collector] owns a private registry so several watchers (and tests) can
// coexist in one process without duplicate-registration panics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wastlwatch"

// Collector records per-page and per-cycle polling metrics.
type Collector struct {
	registry      *prometheus.Registry
	pageRecords   *prometheus.GaugeVec
	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	cycleDuration prometheus.Summary
	lastCycle     prometheus.Gauge
}

// New creates a [Collector] with all metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		pageRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "page_records",
			Help:      "Number of records parsed from a page in the latest cycle",
		}, []string{"page"}),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_fetch_total",
			Help:      "Page fetches by result",
		}, []string{"page", "result"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_fetch_duration_seconds",
			Help:      "Time spent fetching and parsing a page",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"page"}),
		cycleDuration: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Time spent on a full polling cycle",
		}),
		lastCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix timestamp of the last completed polling cycle",
		}),
	}

	c.registry.MustRegister(
		c.pageRecords, c.fetchTotal, c.fetchDuration,
		c.cycleDuration, c.lastCycle,
	)
	return c
}

// ObservePage records the outcome of one page fetch.
func (c *Collector) ObservePage(page string, records int, latency time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.fetchTotal.WithLabelValues(page, result).Inc()
	c.fetchDuration.WithLabelValues(page).Observe(latency.Seconds())
	c.pageRecords.WithLabelValues(page).Set(float64(records))
}

// ObserveCycle records a completed polling cycle.
func (c *Collector) ObserveCycle(duration time.Duration, completedAt time.Time) {
	c.cycleDuration.Observe(duration.Seconds())
	c.lastCycle.Set(float64(completedAt.Unix()))
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
