package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "spinwin"

// Rejection reasons for spins
const (
	ReasonNotEligible = "not_eligible"
	ReasonInFlight    = "in_flight"
)

// Metrics holds the service counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registrations   *prometheus.CounterVec
	spinsStarted    prometheus.Counter
	spinsRejected   *prometheus.CounterVec
	spinsCompleted  *prometheus.CounterVec
	persistFailures prometheus.Counter
	notifyFailures  prometheus.Counter
	activeSessions  prometheus.Gauge
}

// New creates the counters and registers them with reg
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Entry form submissions by outcome.",
		}, []string{"outcome"}),
		spinsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spins_started_total",
			Help:      "Spins accepted by a wheel.",
		}),
		spinsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spins_rejected_total",
			Help:      "Spin requests ignored by a wheel.",
		}, []string{"reason"}),
		spinsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spins_completed_total",
			Help:      "Spins that reported a prize, by prize id.",
		}, []string{"prize_id"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entry_persist_failures_total",
			Help:      "Wins that could not be stored.",
		}),
		notifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_failures_total",
			Help:      "Wins whose outbound notification failed.",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Visitor sessions currently held in memory.",
		}),
	}

	collectors := []prometheus.Collector{
		m.registrations,
		m.spinsStarted,
		m.spinsRejected,
		m.spinsCompleted,
		m.persistFailures,
		m.notifyFailures,
		m.activeSessions,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) Registration(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SpinStarted() {
	if m == nil {
		return
	}
	m.spinsStarted.Inc()
}

func (m *Metrics) SpinRejected(reason string) {
	if m == nil {
		return
	}
	m.spinsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) SpinCompleted(prizeID int) {
	if m == nil {
		return
	}
	m.spinsCompleted.WithLabelValues(strconv.Itoa(prizeID)).Inc()
}

func (m *Metrics) PersistFailed() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

func (m *Metrics) NotifyFailed() {
	if m == nil {
		return
	}
	m.notifyFailures.Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
