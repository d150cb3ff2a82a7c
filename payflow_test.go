package payflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payflowkr/payflow/pkg/domain"
	"github.com/payflowkr/payflow/pkg/ports"
)

func fixedClock() time.Time {
	return time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
}

func TestEngine_HandleRoutesScenario(t *testing.T) {
	var instructions []string
	query := ports.QueryFunc(func(ctx context.Context, instruction string) (*domain.QueryResult, error) {
		instructions = append(instructions, instruction)
		return &domain.QueryResult{
			Raw: "[(26, Decimal('92082741'), Decimal('7611337'), 0)]",
		}, nil
	})

	engine := New(query, WithClock(fixedClock))
	ctx := t.Context()

	out, err := engine.Handle(ctx, "s1", "2026년 1월 전직원 급여 처리")
	require.NoError(t, err)
	require.True(t, out.Handled)
	assert.Equal(t, domain.StageTaxCalc, out.Stage)
	require.Len(t, instructions, 1)
	assert.Contains(t, instructions[0], "2026-01")

	sc, err := engine.Context(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, sc)
	assert.Equal(t, "2026-01", sc.Slots.Period)

	require.NoError(t, engine.Reset(ctx, "s1"))
	sc, err = engine.Context(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, sc)
}

func TestEngine_HandleWithFallback(t *testing.T) {
	query := ports.QueryFunc(func(ctx context.Context, instruction string) (*domain.QueryResult, error) {
		return &domain.QueryResult{
			SQL: "SELECT 1",
			Raw: "[(42,)]",
		}, nil
	})

	engine := New(query, WithClock(fixedClock))

	// A message outside the workflow turns into an ad-hoc query.
	out, err := engine.HandleWithFallback(t.Context(), "s1", "부서별 인원수 보여줘")
	require.NoError(t, err)
	require.True(t, out.Handled)
	require.NotNil(t, out.Artifacts)
	assert.Equal(t, "SELECT 1", out.Artifacts.SQL)
	require.Len(t, out.Artifacts.Rows, 1)
	assert.Equal(t, []any{int64(42)}, out.Artifacts.Rows[0])
}

func TestEngine_HandleWithFallback_DomainFailure(t *testing.T) {
	query := ports.QueryFunc(func(ctx context.Context, instruction string) (*domain.QueryResult, error) {
		return &domain.QueryResult{Err: "syntax error"}, nil
	})

	engine := New(query, WithClock(fixedClock))

	out, err := engine.HandleWithFallback(t.Context(), "s1", "이상한 질문")
	require.NoError(t, err)
	assert.Contains(t, out.Reply, "syntax error")
}

func TestEngine_SessionsExposed(t *testing.T) {
	query := ports.QueryFunc(func(ctx context.Context, instruction string) (*domain.QueryResult, error) {
		return &domain.QueryResult{Rows: [][]any{{26, 1.0, 1.0, 0}}}, nil
	})
	engine := New(query, WithClock(fixedClock))
	ctx := t.Context()

	_, err := engine.Handle(ctx, "a", "이번달 전직원 급여 처리")
	require.NoError(t, err)

	sessions, err := engine.Sessions().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, sessions)
}
