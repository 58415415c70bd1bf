// Package metrics exposes engine counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"marketsync-service/internal/application"
	"marketsync-service/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "marketsync"

type Metrics struct {
	registry *prometheus.Registry

	fetchTotal      *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	fetchRecords    *prometheus.GaugeVec
	durableFailures *prometheus.CounterVec
	cyclesSkipped   prometheus.Counter
	alertsSent      *prometheus.CounterVec
	alertsDropped   *prometheus.CounterVec
	cacheSize       prometheus.Gauge
}

var _ application.SyncMetrics = (*Metrics)(nil)

// New builds the collectors on a private registry, plus Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Exchange fetches by outcome.",
		}, []string{"exchange", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Exchange fetch duration in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 45, 60},
		}, []string{"exchange"}),
		fetchRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fetch_records",
			Help:      "Records returned by the last successful fetch.",
		}, []string{"exchange"}),
		durableFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "durable_write_failures_total",
			Help:      "Failed durable store writes.",
		}, []string{"exchange"}),
		cyclesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_skipped_total",
			Help:      "Ticks skipped because a cycle was still running.",
		}),
		alertsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_sent_total",
			Help:      "Alerts delivered to the operator channel.",
		}, []string{"exchange"}),
		alertsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_suppressed_total",
			Help:      "Alerts dropped inside the cooldown window.",
		}, []string{"exchange"}),
		cacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_records",
			Help:      "Records held in the in-memory cache.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.fetchTotal, m.fetchDuration, m.fetchRecords, m.durableFailures,
		m.cyclesSkipped, m.alertsSent, m.alertsDropped, m.cacheSize,
	)
	return m
}

func (m *Metrics) ObserveFetch(ex domain.Exchange, ok bool, records int, took time.Duration) {
	outcome := "failed"
	if ok {
		outcome = "ok"
		m.fetchRecords.WithLabelValues(string(ex)).Set(float64(records))
	}
	m.fetchTotal.WithLabelValues(string(ex), outcome).Inc()
	m.fetchDuration.WithLabelValues(string(ex)).Observe(took.Seconds())
}

func (m *Metrics) DurableWriteFailed(ex domain.Exchange) {
	m.durableFailures.WithLabelValues(string(ex)).Inc()
}

func (m *Metrics) CycleSkipped()                      { m.cyclesSkipped.Inc() }
func (m *Metrics) AlertSent(ex domain.Exchange)       { m.alertsSent.WithLabelValues(string(ex)).Inc() }
func (m *Metrics) AlertSuppressed(ex domain.Exchange) { m.alertsDropped.WithLabelValues(string(ex)).Inc() }
func (m *Metrics) CacheSize(n int)                    { m.cacheSize.Set(float64(n)) }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
