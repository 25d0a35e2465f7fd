package querycache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Hits          *prometheus.CounterVec
	Misses        *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	Invalidations *prometheus.CounterVec
	Subscribers   prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Hits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kycreview_query_cache_hits_total",
			Help: "Reads served from the query cache",
		}, []string{"endpoint"}),
		Misses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kycreview_query_cache_misses_total",
			Help: "Reads that required a fetch",
		}, []string{"endpoint"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kycreview_query_cache_fetch_duration_seconds",
			Help:    "Duration of query cache fetches by endpoint and outcome",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint", "outcome"}),
		Invalidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kycreview_query_cache_invalidations_total",
			Help: "Tag invalidations by tag and origin (local or remote)",
		}, []string{"tag", "origin"}),
		Subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kycreview_query_cache_subscribers",
			Help: "Active query cache subscriptions",
		}),
	}
}

func (m *Metrics) hit(endpoint string) {
	if m != nil {
		m.Hits.WithLabelValues(endpoint).Inc()
	}
}

func (m *Metrics) miss(endpoint string) {
	if m != nil {
		m.Misses.WithLabelValues(endpoint).Inc()
	}
}

func (m *Metrics) fetched(endpoint string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.FetchDuration.WithLabelValues(endpoint, outcome).Observe(d.Seconds())
}

func (m *Metrics) invalidated(tags []Tag, origin string) {
	if m == nil {
		return
	}
	for _, t := range tags {
		m.Invalidations.WithLabelValues(string(t), origin).Inc()
	}
}

func (m *Metrics) subscribers(delta float64) {
	if m != nil {
		m.Subscribers.Add(delta)
	}
}
