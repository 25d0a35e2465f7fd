package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks what happens to emitted review decisions.
type Metrics struct {
	Recorded        *prometheus.CounterVec
	Dropped         prometheus.Counter
	PersistFailures prometheus.Counter
}

// NewMetrics creates the audit metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Recorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kycreview_audit_events_recorded_total",
			Help: "Audit events accepted for persistence by action",
		}, []string{"action"}),
		Dropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "kycreview_audit_events_dropped_total",
			Help: "Audit events dropped because the async buffer was full",
		}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "kycreview_audit_persist_failures_total",
			Help: "Audit events the store or sink failed to write",
		}),
	}
}

func (m *Metrics) recorded(action string) {
	if m == nil {
		return
	}
	m.Recorded.WithLabelValues(action).Inc()
}

func (m *Metrics) dropped() {
	if m == nil {
		return
	}
	m.Dropped.Inc()
}

func (m *Metrics) persistFailed() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}
