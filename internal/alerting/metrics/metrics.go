package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AlertsRaised     *prometheus.CounterVec
	AlertsSuppressed *prometheus.CounterVec
	AlertsResolved   *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		AlertsRaised: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_alerts_raised_total",
			Help: "Total number of alerts raised, by layer",
		}, []string{"layer"}),
		AlertsSuppressed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_alerts_suppressed_total",
			Help: "Total number of duplicate alerts suppressed, by layer",
		}, []string{"layer"}),
		AlertsResolved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_alerts_resolved_total",
			Help: "Total number of alerts explicitly resolved, by layer",
		}, []string{"layer"}),
	}
}

func (m *Metrics) IncrementRaised(layer string) {
	m.AlertsRaised.WithLabelValues(layer).Inc()
}

func (m *Metrics) IncrementSuppressed(layer string) {
	m.AlertsSuppressed.WithLabelValues(layer).Inc()
}

func (m *Metrics) IncrementResolved(layer string) {
	m.AlertsResolved.WithLabelValues(layer).Inc()
}
