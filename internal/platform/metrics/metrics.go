package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the console-level Prometheus metrics.
type Metrics struct {
	RequestLatency *prometheus.HistogramVec
	ReviewSessions prometheus.Gauge
}

// New creates and registers the console metrics on reg.
// Pass prometheus.DefaultRegisterer in main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kycreview_http_request_duration_seconds",
			Help:    "Latency of console HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		ReviewSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kycreview_review_sessions_open",
			Help: "Number of open detail-view review sessions",
		}),
	}
}

// ObserveRequestLatency records the duration of one console request.
func (m *Metrics) ObserveRequestLatency(method, route, status string, d time.Duration) {
	m.RequestLatency.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// SetReviewSessions sets the open review session gauge.
func (m *Metrics) SetReviewSessions(n int) {
	m.ReviewSessions.Set(float64(n))
}
