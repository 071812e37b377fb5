package report

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

type Metrics struct {
	reports *prometheus.CounterVec
	dwell   prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "behavior_monitor",
			Name:      "reports_total",
			Help:      "Behavior reports received by the collector, by behavior and outcome.",
		}, []string{"behavior", "outcome"}),
		dwell: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "behavior_monitor",
			Name:      "dwell_seconds",
			Help:      "Reported time on page.",
			Buckets:   []float64{1, 5, 15, 30, 60, 180, 600, 1800},
		}),
	}
	reg.MustRegister(m.reports, m.dwell)
	return m
}

func (m *Metrics) observe(behavior, outcome string) {
	m.reports.WithLabelValues(behavior, outcome).Inc()
}
