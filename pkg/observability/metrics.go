package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/vivarium/pkg/domain"
)

const namespace = "vivarium"

// Metrics holds the collectors fed by Hooks.
type Metrics struct {
	ProcessUpdates *prometheus.CounterVec
	Batches        *prometheus.CounterVec
	Ticks          *prometheus.HistogramVec
	SimulatedTime  *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ProcessUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "process_updates_total",
			Help:      "Updates computed, by process path.",
		}, []string{"experiment", "process", "deriver"}),
		Batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batches of updates applied to the state tree.",
		}, []string{"experiment"}),
		Ticks: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall time spent in one call to Update.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"experiment"}),
		SimulatedTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "simulated_time",
			Help:      "Global simulated time after the last tick.",
		}, []string{"experiment"}),
	}
	if reg != nil {
		reg.MustRegister(m.ProcessUpdates, m.Batches, m.Ticks, m.SimulatedTime)
	}
	return m
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnProcessUpdate: func(_ context.Context, e *domain.ProcessEvent) {
			deriver := "false"
			if e.Deriver {
				deriver = "true"
			}
			m.ProcessUpdates.WithLabelValues(e.ExperimentID, e.Path.String(), deriver).Inc()
		},
		OnBatchApplied: func(_ context.Context, e *domain.BatchEvent) {
			m.Batches.WithLabelValues(e.ExperimentID).Inc()
		},
		OnTick: func(_ context.Context, e *domain.TickEvent) {
			m.Ticks.WithLabelValues(e.ExperimentID).Observe(e.Elapsed.Seconds())
			m.SimulatedTime.WithLabelValues(e.ExperimentID).Set(e.Time)
		},
	}
}
