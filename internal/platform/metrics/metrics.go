// Package metrics holds the process-level Prometheus metrics. Subsystem
// counters live in each subsystem's metrics package.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	httpDuration    *prometheus.HistogramVec
	resilienceScore prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		httpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vigil_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		resilienceScore: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "vigil_resilience_score",
			Help: "Latest aggregate institutional resilience score (0-100)",
		}),
	}
}

// ObserveHTTPDuration records one request's latency.
func (m *Metrics) ObserveHTTPDuration(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(route, method, status).Observe(seconds)
}

// SetResilienceScore publishes the latest aggregate score.
func (m *Metrics) SetResilienceScore(score float64) {
	if m == nil {
		return
	}
	m.resilienceScore.Set(score)
}
