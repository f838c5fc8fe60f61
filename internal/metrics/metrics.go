// Package metrics exposes tracker, health and host-link telemetry as
// Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/alexanderramin/codeclock/internal/domain"
)

const namespace = "codeclock"

var states = []domain.TrackerState{
	domain.StateIdle,
	domain.StateTracking,
	domain.StatePausedByInactivity,
	domain.StatePausedByFocusLoss,
	domain.StatePausedByHealthBreak,
	domain.StatePausedManually,
}

// Metrics implements tracker.Observer and health.Observer.
type Metrics struct {
	transitions    *prometheus.CounterVec
	state          *prometheus.GaugeVec
	flushes        *prometheus.CounterVec
	minutes        *prometheus.CounterVec
	flushFailures  *prometheus.CounterVec
	pollsSkipped   prometheus.Counter
	remindersShown *prometheus.CounterVec
	responses      *prometheus.CounterVec
	signals        *prometheus.CounterVec
	clients        prometheus.Gauge
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracker_transitions_total",
			Help:      "Tracker state transitions by target state",
		}, []string{"to"}),
		state: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracker_state",
			Help:      "1 for the tracker's current state, 0 otherwise",
		}, []string{"state"}),
		flushes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_flushes_total",
			Help:      "Sessions written to the ledger by reason",
		}, []string{"reason"}),
		minutes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_minutes_total",
			Help:      "Minutes written to the ledger by reason",
		}, []string{"reason"}),
		flushFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_flush_failures_total",
			Help:      "Ledger writes that failed by reason",
		}, []string{"reason"}),
		pollsSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "branch_polls_skipped_total",
			Help:      "Branch polls skipped because one was already running",
		}),
		remindersShown: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_shown_total",
			Help:      "Health reminders shown by kind",
		}, []string{"kind"}),
		responses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_responses_total",
			Help:      "Health reminder answers by kind and response",
		}, []string{"kind", "response"}),
		signals: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hostlink_signals_total",
			Help:      "Activity signals received from editor hosts by kind",
		}, []string{"kind"}),
		clients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hostlink_clients",
			Help:      "Connected editor hosts",
		}),
	}
	m.setState(domain.StateIdle)
	return m
}

func (m *Metrics) setState(current domain.TrackerState) {
	for _, s := range states {
		v := 0.0
		if s == current {
			v = 1
		}
		m.state.WithLabelValues(string(s)).Set(v)
	}
}

func (m *Metrics) StateChanged(_, to domain.TrackerState) {
	m.transitions.WithLabelValues(string(to)).Inc()
	m.setState(to)
}

func (m *Metrics) SessionFlushed(reason domain.StopReason, minutes float64) {
	m.flushes.WithLabelValues(string(reason)).Inc()
	m.minutes.WithLabelValues(string(reason)).Add(minutes)
}

func (m *Metrics) FlushFailed(reason domain.StopReason, _ error) {
	m.flushFailures.WithLabelValues(string(reason)).Inc()
}

func (m *Metrics) PollSkipped() {
	m.pollsSkipped.Inc()
}

func (m *Metrics) ReminderShown(kind domain.ReminderKind) {
	m.remindersShown.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) ReminderAnswered(kind domain.ReminderKind, resp domain.ReminderResponse) {
	m.responses.WithLabelValues(string(kind), string(resp)).Inc()
}

func (m *Metrics) SignalReceived(kind domain.SignalKind) {
	m.signals.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) ClientConnected() {
	m.clients.Inc()
}

func (m *Metrics) ClientDisconnected() {
	m.clients.Dec()
}
