package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payflowkr/payflow/pkg/domain"
	"github.com/payflowkr/payflow/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, opts ...Option) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewFromClient(client, opts...), mr
}

func TestStore_Contract(t *testing.T) {
	store, _ := newTestStore(t)
	ports.RunContextStoreContract(t, store)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := t.Context()

	sc := domain.NewContext()
	sc.Stage = domain.StagePaymentRun
	sc.Slots.Period = "2026-01"
	sc.Slots.PayDate = "2026-01-25"
	sc.Refs.PayrollRunID = "PR_202601_A3F9B1"
	sc.Refs.Tax = &domain.TaxSummary{EmployeeCount: 26, TotalNet: 84471404}
	sc.History = append(sc.History, domain.HistoryEntry{
		Stage: domain.StagePayrollCalc, Summary: "급여 산정 조회 실행", Ref: "PR_202601_A3F9B1", At: time.Now().UTC(),
	})

	require.NoError(t, store.Save(ctx, "s1", sc))

	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StagePaymentRun, got.Stage)
	assert.Equal(t, "2026-01-25", got.Slots.PayDate)
	assert.Equal(t, "PR_202601_A3F9B1", got.Refs.PayrollRunID)
	require.NotNil(t, got.Refs.Tax)
	assert.Equal(t, 26, got.Refs.Tax.EmployeeCount)
	require.Len(t, got.History, 1)
}

func TestStore_LoadMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Load(t.Context(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_DeleteRemovesKeyAndIndex(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := t.Context()

	require.NoError(t, store.Save(ctx, "s1", domain.NewContext()))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestStore_ListPrunesExpired(t *testing.T) {
	store, mr := newTestStore(t, WithTTL(time.Minute))
	ctx := t.Context()

	require.NoError(t, store.Save(ctx, "s1", domain.NewContext()))
	require.NoError(t, store.Save(ctx, "s2", domain.NewContext()))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, sessions)

	// Past the TTL both the value and the index entry disappear.
	mr.FastForward(2 * time.Minute)

	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	_, err = store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_NoTTLSurvivesPrune(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := t.Context()

	require.NoError(t, store.Save(ctx, "s1", domain.NewContext()))
	mr.FastForward(365 * 24 * time.Hour)

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, sessions)
}

func TestStore_CustomPrefix(t *testing.T) {
	store, mr := newTestStore(t, WithPrefix("hr:ctx:"))
	ctx := t.Context()

	require.NoError(t, store.Save(ctx, "s1", domain.NewContext()))
	assert.True(t, mr.Exists("hr:ctx:s1"))
	assert.True(t, mr.Exists("hr:ctx:index"))
}
