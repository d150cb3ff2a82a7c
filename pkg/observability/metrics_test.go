package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payflowkr/payflow/pkg/domain"
)

func TestHooksRecordMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	hooks := m.Hooks(nil)
	ctx := t.Context()

	hooks.OnStageEnter(ctx, &domain.StageEvent{
		Type: domain.EventStageEnter, SessionID: "s1", Stage: domain.StagePayrollCalc,
	})
	hooks.OnStageEnter(ctx, &domain.StageEvent{
		Type: domain.EventStageEnter, SessionID: "s1", Stage: domain.StagePayrollCalc,
	})
	hooks.OnStageComplete(ctx, &domain.StageEvent{
		Type: domain.EventStageComplete, SessionID: "s1",
		Stage: domain.StagePayrollCalc, NextStage: domain.StageTaxCalc, Ref: "PR_202601_X",
	})
	hooks.OnQuery(ctx, &domain.QueryEvent{
		Type: domain.EventQuery, SessionID: "s1", Stage: domain.StagePayrollCalc,
		Duration: 120 * time.Millisecond, IsError: false,
	})
	hooks.OnQuery(ctx, &domain.QueryEvent{
		Type: domain.EventQuery, SessionID: "s1", Stage: domain.StageTaxCalc,
		Duration: 50 * time.Millisecond, IsError: true,
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.stageVisits.WithLabelValues("PAYROLL_CALC")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageTransitions.WithLabelValues("PAYROLL_CALC", "TAX_CALC")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queryErrors.WithLabelValues("TAX_CALC")))

	count, err := testutil.GatherAndCount(reg,
		"payflow_stage_visits_total",
		"payflow_stage_transitions_total",
		"payflow_query_duration_seconds",
		"payflow_query_errors_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}
