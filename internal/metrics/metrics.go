// Package metrics exposes the Prometheus collectors for maze sessions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "maze_robot"

// Metrics groups the collectors updated by the service layer. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Commands        *prometheus.CounterVec
	SessionsCreated *prometheus.CounterVec
	SessionsActive  prometheus.Gauge
	Finishes        prometheus.Counter
	GenerateSeconds *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Navigation commands executed, by command and result.",
			},
			[]string{"command", "result"},
		),
		SessionsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_created_total",
				Help:      "Sessions created, by maze shape.",
			},
			[]string{"shape"},
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Sessions currently held in memory.",
			},
		),
		Finishes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "finishes_total",
				Help:      "Times a robot reached the finish cell.",
			},
		),
		GenerateSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generate_duration_seconds",
				Help:      "Time spent building maze layouts.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"shape"},
		),
	}
	reg.MustRegister(m.Commands, m.SessionsCreated, m.SessionsActive, m.Finishes, m.GenerateSeconds)
	return m
}

// ObserveCommand counts one executed command.
func (m *Metrics) ObserveCommand(command, result string) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(command, result).Inc()
}

// ObserveFinish counts one arrival at the finish.
func (m *Metrics) ObserveFinish() {
	if m == nil {
		return
	}
	m.Finishes.Inc()
}

// ObserveSessionCreated counts a new session and the time spent building
// its maze.
func (m *Metrics) ObserveSessionCreated(shape string, took time.Duration) {
	if m == nil {
		return
	}
	m.SessionsCreated.WithLabelValues(shape).Inc()
	m.GenerateSeconds.WithLabelValues(shape).Observe(took.Seconds())
}

// SetActiveSessions records the in-memory session count.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.SessionsActive.Set(float64(n))
}
