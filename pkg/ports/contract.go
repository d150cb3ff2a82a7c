package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payflowkr/payflow/pkg/domain"
)

// RunContextStoreContract runs a suite of tests to verify that a
// ContextStore implementation adheres to the defined interface contract.
func RunContextStoreContract(t *testing.T, store ContextStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		sc := domain.NewContext()
		sc.Stage = domain.StageTaxCalc
		sc.Slots.Period = "2026-01"
		sc.Refs.PayrollRunID = "PR_202601_AAAAAA"

		err := store.Save(ctx, sessionID, sc)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sc.Stage, loaded.Stage)
		assert.Equal(t, "2026-01", loaded.Slots.Period)
		assert.Equal(t, "PR_202601_AAAAAA", loaded.Refs.PayrollRunID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewContext())
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("Delete Non-Existent", func(t *testing.T) {
		err := store.Delete(ctx, "non-existent-"+sessionID)
		assert.NoError(t, err, "deleting an unknown session is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewContext())
		_ = store.Save(ctx, id2, domain.NewContext())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
