package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Checks *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Checks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "willforge_ratelimit_checks_total",
			Help: "Total rate limit checks by scope and outcome",
		}, []string{"scope", "outcome"}),
	}
}

func (m *Metrics) IncrementCheck(scope string, allowed bool) {
	outcome := "allowed"
	if !allowed {
		outcome = "throttled"
	}
	m.Checks.WithLabelValues(scope, outcome).Inc()
}
