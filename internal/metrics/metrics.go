// Package metrics exposes the control server's Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"mpihole/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Blocking gauge values (1.0=enabled, 0.0=disabled, -1.0=unknown).
const (
	blockingEnabled  = 1.0
	blockingDisabled = 0.0
	blockingUnknown  = -1.0
)

type Metrics struct {
	registry *prometheus.Registry

	toggles        *prometheus.CounterVec
	serverFailures *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	blocking       *prometheus.GaugeVec
	timer          *prometheus.GaugeVec
}

// New creates the metrics on a private registry, together with the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mpihole_toggles_total",
			Help: "Toggle requests grouped by action and result.",
		}, []string{"action", "result"}),
		serverFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mpihole_server_toggle_failures_total",
			Help: "Toggle failures per Pi-hole server.",
		}, []string{"server"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mpihole_toggle_duration_seconds",
			Help:    "Time taken to fan a toggle out to every server.",
			Buckets: prometheus.DefBuckets,
		}, []string{"action"}),
		blocking: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mpihole_server_blocking",
			Help: "Blocking status per server (1.0=enabled, 0.0=disabled, -1.0=unknown).",
		}, []string{"server"}),
		timer: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mpihole_server_disable_timer_seconds",
			Help: "Seconds left before a timed disable expires.",
		}, []string{"server"}),
	}
	m.registry.MustRegister(
		m.toggles,
		m.serverFailures,
		m.duration,
		m.blocking,
		m.timer,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry is exposed for tests and for extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveToggle records a finished toggle and its per-server failures.
func (m *Metrics) ObserveToggle(e models.ToggleEvent, took time.Duration) {
	result := "success"
	if !e.Succeeded {
		result = "failure"
	}
	m.toggles.WithLabelValues(e.Action, result).Inc()
	m.duration.WithLabelValues(e.Action).Observe(took.Seconds())
	for _, o := range e.Failed() {
		m.serverFailures.WithLabelValues(o.BaseURL).Inc()
	}
}

// SetStatus updates the per-server gauges.
func (m *Metrics) SetStatus(s models.ServerStatus) {
	v := blockingUnknown
	switch s.Blocking {
	case models.StatusEnabled:
		v = blockingEnabled
	case models.StatusDisabled:
		v = blockingDisabled
	}
	m.blocking.WithLabelValues(s.BaseURL).Set(v)
	m.timer.WithLabelValues(s.BaseURL).Set(float64(s.Timer))
}
