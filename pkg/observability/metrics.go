package observability

import (
	"context"

	"github.com/aretw0/keypad/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by the engine hooks.
type Metrics struct {
	Keys        *prometheus.CounterVec
	Evaluations *prometheus.CounterVec
	Errors      *prometheus.CounterVec
	Clears      prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Keys: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keypad_keys_total",
				Help: "Total number of keys handled, by kind",
			},
			[]string{"kind", "ignored"},
		),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keypad_evaluations_total",
				Help: "Total number of evaluated operations, by operator",
			},
			[]string{"operator"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keypad_errors_total",
				Help: "Total number of times a calculator entered the error state, by kind",
			},
			[]string{"kind"},
		),
		Clears: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keypad_clears_total",
			Help: "Total number of clear keys",
		}),
	}
	reg.MustRegister(m.Keys, m.Evaluations, m.Errors, m.Clears)
	return m
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnKey: func(ctx context.Context, e *domain.KeyEvent) {
			ignored := "false"
			if e.Ignored {
				ignored = "true"
			}
			m.Keys.WithLabelValues(string(e.Key.Kind), ignored).Inc()
		},
		OnEvaluate: func(ctx context.Context, e *domain.EvaluateEvent) {
			m.Evaluations.WithLabelValues(e.Operator.Name()).Inc()
		},
		OnError: func(ctx context.Context, e *domain.ErrorEvent) {
			m.Errors.WithLabelValues(string(e.Kind)).Inc()
		},
		OnClear: func(ctx context.Context, e *domain.EventBase) {
			m.Clears.Inc()
		},
	}
}
