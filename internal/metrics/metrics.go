// Package metrics exposes Prometheus counters for ledger and export activity.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the collectors on a private registry. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	registry *prometheus.Registry

	ledgerOps      *prometheus.CounterVec
	ledgerSize     prometheus.Gauge
	exports        *prometheus.CounterVec
	exportDuration prometheus.Histogram
	exportPages    prometheus.Histogram
}

// New registers all collectors, including the Go runtime collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ledgerOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderlist",
			Name:      "ledger_operations_total",
			Help:      "Ledger add/remove requests by outcome.",
		}, []string{"op", "result", "reason"}),
		ledgerSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "orderlist",
			Name:      "ledger_items",
			Help:      "Number of items currently in the ledger.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderlist",
			Name:      "exports_total",
			Help:      "Document exports by outcome.",
		}, []string{"result", "reason"}),
		exportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "orderlist",
			Name:      "export_duration_seconds",
			Help:      "Time spent composing a document.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		exportPages: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "orderlist",
			Name:      "export_pages",
			Help:      "Pages per successful export.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
	}
	reg.MustRegister(
		m.ledgerOps, m.ledgerSize, m.exports, m.exportDuration, m.exportPages,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// LedgerOp counts one add or remove. reason is empty on success.
func (m *Metrics) LedgerOp(op, reason string, size int) {
	if m == nil {
		return
	}
	result := ResultOK
	if reason != "" {
		result = ResultError
	}
	m.ledgerOps.WithLabelValues(op, result, reason).Inc()
	m.ledgerSize.Set(float64(size))
}

// Export records one export attempt.
func (m *Metrics) Export(reason string, pages int, took time.Duration) {
	if m == nil {
		return
	}
	if reason != "" {
		m.exports.WithLabelValues(ResultError, reason).Inc()
		return
	}
	m.exports.WithLabelValues(ResultOK, "").Inc()
	m.exportDuration.Observe(took.Seconds())
	m.exportPages.Observe(float64(pages))
}
