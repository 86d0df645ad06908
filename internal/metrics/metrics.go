// Package metrics exposes controller activity as Prometheus counters.
package metrics

import (
	"context"

	"github.com/aretw0/tgadmin/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the controller counters.
type Metrics struct {
	Events        *prometheus.CounterVec
	Transitions   *prometheus.CounterVec
	Mutations     *prometheus.CounterVec
	MenuFallbacks prometheus.Counter
	Denied        prometheus.Counter
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgadmin_events_total",
				Help: "Inbound chat events by kind",
			},
			[]string{"kind"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgadmin_transitions_total",
				Help: "Conversation state changes",
			},
			[]string{"from", "to"},
		),
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgadmin_mutations_total",
				Help: "Attempted document mutations by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		MenuFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tgadmin_menu_edit_fallbacks_total",
			Help: "Menus sent as new messages because the live one could not be edited",
		}),
		Denied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tgadmin_access_denied_total",
			Help: "Events refused by the allow-list",
		}),
	}
	reg.MustRegister(m.Events, m.Transitions, m.Mutations, m.MenuFallbacks, m.Denied)
	return m
}

// Hooks returns lifecycle hooks that feed the counters.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEvent: func(_ context.Context, e *domain.Event) {
			m.Events.WithLabelValues(string(e.Kind)).Inc()
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(string(e.From), string(e.To)).Inc()
		},
		OnMutation: func(_ context.Context, e *domain.MutationEvent) {
			m.Mutations.WithLabelValues(e.Kind.String(), Outcome(e.Err)).Inc()
		},
		OnMenu: func(_ context.Context, e *domain.MenuEvent) {
			if e.Fallback {
				m.MenuFallbacks.Inc()
			}
		},
		OnDenied: func(context.Context, *domain.AccessEvent) {
			m.Denied.Inc()
		},
	}
}
