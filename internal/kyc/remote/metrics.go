package remote

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records remote call outcomes.
type Metrics struct {
	CallDuration *prometheus.HistogramVec
	BreakerOpen  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kycreview_remote_call_duration_seconds",
			Help:    "Duration of calls to the KYC authority by operation and outcome",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "outcome"}),
		BreakerOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kycreview_remote_breaker_open",
			Help: "1 while the KYC authority circuit breaker is open",
		}),
	}
}

func (m *Metrics) observe(op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.CallDuration.WithLabelValues(op, outcome).Observe(d.Seconds())
}

func (m *Metrics) setBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerOpen.Set(1)
		return
	}
	m.BreakerOpen.Set(0)
}
