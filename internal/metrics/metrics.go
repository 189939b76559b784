// Package metrics exposes Prometheus collectors for loads, operations and
// sessions. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tidycsv"

// Metrics owns a registry with the service collectors.
type Metrics struct {
	registry    *prometheus.Registry
	loads       *prometheus.CounterVec
	operations  *prometheus.CounterVec
	rowsRemoved *prometheus.CounterVec
	sessions    prometheus.Gauge
	duration    *prometheus.HistogramVec
}

// New registers the collectors, plus the Go runtime and process collectors,
// on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "CSV loads by result.",
		}, []string{"result"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Applied operations by operation and result.",
		}, []string{"operation", "result"}),
		rowsRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_removed_total",
			Help:      "Rows removed by drop and dedupe operations.",
		}, []string{"operation"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions currently held in memory.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time spent applying an operation, including loads.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"operation"}),
	}
	m.registry.MustRegister(
		m.loads, m.operations, m.rowsRemoved, m.sessions, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveLoad counts a load attempt.
func (m *Metrics) ObserveLoad(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(result(err)).Inc()
	m.duration.WithLabelValues("load").Observe(elapsed.Seconds())
}

// ObserveOperation counts an operation and the rows it removed.
func (m *Metrics) ObserveOperation(operation string, elapsed time.Duration, removed int, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if err == nil && removed > 0 {
		m.rowsRemoved.WithLabelValues(operation).Add(float64(removed))
	}
}

// SetSessions sets the active session gauge.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
