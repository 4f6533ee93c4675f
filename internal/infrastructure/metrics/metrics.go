// Package metrics owns the client's Prometheus collectors. Each instance
// registers into its own registry so tests and multiple apps never collide.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Registry        *prometheus.Registry
	ActionsTotal    *prometheus.CounterVec
	EffectFailures  prometheus.Counter
	NoticesTotal    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		ActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskboard_actions_total",
				Help: "Total number of actions dispatched into the state container",
			},
			[]string{"kind"},
		),
		EffectFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "taskboard_effect_failures_total",
				Help: "Total number of persisted-storage effects that failed",
			},
		),
		NoticesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskboard_notices_total",
				Help: "Total number of user-facing notices by severity",
			},
			[]string{"severity"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskboard_api_request_duration_seconds",
				Help:    "Remote API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	registry.MustRegister(m.ActionsTotal, m.EffectFailures, m.NoticesTotal, m.RequestDuration)
	return m
}

// ObserveRequest records a remote call. status is 0 for transport failures.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// WriteTextfile writes every collector to path in the text exposition format
// read by node_exporter's textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}

func (m *Metrics) IncAction(kind string) {
	if m == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncNotice(severity string) {
	if m == nil {
		return
	}
	m.NoticesTotal.WithLabelValues(severity).Inc()
}

func (m *Metrics) IncEffectFailure() {
	if m == nil {
		return
	}
	m.EffectFailures.Inc()
}
