// Package metrics exposes Prometheus counters for gate admission decisions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	admissionsTotal    prometheus.Counter
	rejectionsTotal    *prometheus.CounterVec
	cooldownsInstalled *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		admissionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vigil_gate_admissions_total",
			Help: "Total submissions admitted through the gate",
		}),
		rejectionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_gate_rejections_total",
			Help: "Total submissions rejected by the gate, by rejection kind",
		}, []string{"kind"}),
		cooldownsInstalled: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_gate_cooldowns_installed_total",
			Help: "Total cooldowns installed, by reason",
		}, []string{"reason"}),
	}
}

func (m *Metrics) IncrementAdmissions() {
	if m == nil {
		return
	}
	m.admissionsTotal.Inc()
}

func (m *Metrics) IncrementRejections(kind string) {
	if m == nil {
		return
	}
	m.rejectionsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementCooldowns(reason string) {
	if m == nil {
		return
	}
	m.cooldownsInstalled.WithLabelValues(reason).Inc()
}
