// Package observability wires the engine's lifecycle hooks into
// Prometheus metrics and structured logs.
package observability

import (
	"context"

	"log/slog"

	"github.com/payflowkr/payflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the scenario engine.
type Metrics struct {
	stageVisits      *prometheus.CounterVec
	stageTransitions *prometheus.CounterVec
	queryDuration    *prometheus.HistogramVec
	queryErrors      *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on the given
// registerer (use prometheus.DefaultRegisterer in binaries).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stageVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payflow_stage_visits_total",
				Help: "Total number of stage handler dispatches",
			},
			[]string{"stage"},
		),
		stageTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payflow_stage_transitions_total",
				Help: "Total number of completed stage transitions",
			},
			[]string{"stage", "next_stage"},
		),
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "payflow_query_duration_seconds",
				Help: "Duration of external SQL service calls",
			},
			[]string{"stage"},
		),
		queryErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payflow_query_errors_total",
				Help: "Total number of failed SQL service calls",
			},
			[]string{"stage"},
		),
	}
	reg.MustRegister(m.stageVisits, m.stageTransitions, m.queryDuration, m.queryErrors)
	return m
}

// Hooks returns lifecycle hooks that record metrics and, when a logger
// is given, emit structured events.
func (m *Metrics) Hooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *domain.StageEvent) {
			m.stageVisits.WithLabelValues(string(e.Stage)).Inc()
			if logger != nil {
				logger.Info("stage_enter", "session_id", e.SessionID, "stage", e.Stage)
			}
		},
		OnStageComplete: func(ctx context.Context, e *domain.StageEvent) {
			m.stageTransitions.WithLabelValues(string(e.Stage), string(e.NextStage)).Inc()
			if logger != nil {
				logger.Info("stage_complete",
					"session_id", e.SessionID,
					"stage", e.Stage,
					"next_stage", e.NextStage,
					"ref", e.Ref,
				)
			}
		},
		OnQuery: func(ctx context.Context, e *domain.QueryEvent) {
			m.queryDuration.WithLabelValues(string(e.Stage)).Observe(e.Duration.Seconds())
			if e.IsError {
				m.queryErrors.WithLabelValues(string(e.Stage)).Inc()
			}
			if logger != nil {
				logger.Info("query",
					"session_id", e.SessionID,
					"stage", e.Stage,
					"duration", e.Duration,
					"is_error", e.IsError,
				)
			}
		},
	}
}
