package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	backend "github.com/redis/go-redis/v9"
)

func newTestLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLocker(client, "payflow:"), mr
}

func TestLocker_AcquireAndRelease(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := t.Context()

	unlock, err := locker.Lock(ctx, "s1", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("payflow:lock:s1"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("payflow:lock:s1"))

	// Reacquirable after release.
	unlock, err = locker.Lock(ctx, "s1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func TestLocker_ContendedLockTimesOut(t *testing.T) {
	locker, _ := newTestLocker(t)

	unlock, err := locker.Lock(t.Context(), "s1", time.Minute)
	require.NoError(t, err)
	defer func() { _ = unlock(context.Background()) }()

	ctx, cancel := context.WithTimeout(t.Context(), 300*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, "s1", time.Minute)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLockAcquire)
}

func TestLocker_UnlockIgnoresStolenLock(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := t.Context()

	unlock, err := locker.Lock(ctx, "s1", time.Minute)
	require.NoError(t, err)

	// Simulate expiry plus takeover by another holder.
	mr.Del("payflow:lock:s1")
	require.NoError(t, mr.Set("payflow:lock:s1", "other-holder"))

	// The stale unlock must not delete the new holder's lock.
	require.NoError(t, unlock(ctx))
	got, err := mr.Get("payflow:lock:s1")
	require.NoError(t, err)
	assert.Equal(t, "other-holder", got)
}

func TestLocker_WaitsForRelease(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := t.Context()

	unlock, err := locker.Lock(ctx, "s1", time.Minute)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		u, err := locker.Lock(ctx, "s1", time.Minute)
		if err == nil {
			_ = u(ctx)
		}
		done <- err
	}()

	time.Sleep(150 * time.Millisecond)
	require.NoError(t, unlock(ctx))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("second locker never acquired the lock")
	}
}
