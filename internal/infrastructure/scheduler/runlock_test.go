package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLock(t *testing.T, ttl time.Duration) (*RunLock, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRunLock(client, "test:runlock:", ttl), mr
}

func TestRunLock_AcquireAndRelease(t *testing.T) {
	lock, _ := newTestLock(t, time.Minute)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, "order_import")
	require.NoError(t, err)

	// A second acquire while held fails
	_, err = lock.Acquire(ctx, "order_import")
	assert.ErrorIs(t, err, ErrLockHeld)

	// After release the lock is free again
	require.NoError(t, release(ctx))

	release2, err := lock.Acquire(ctx, "order_import")
	require.NoError(t, err)
	require.NoError(t, release2(ctx))
}

func TestRunLock_JobsAreIndependent(t *testing.T) {
	lock, _ := newTestLock(t, time.Minute)
	ctx := context.Background()

	release1, err := lock.Acquire(ctx, "order_import")
	require.NoError(t, err)
	defer release1(ctx)

	// A different job name is a different lock
	release2, err := lock.Acquire(ctx, "inventory_sync")
	require.NoError(t, err)
	defer release2(ctx)
}

func TestRunLock_ExpiresAfterTTL(t *testing.T) {
	lock, mr := newTestLock(t, time.Minute)
	ctx := context.Background()

	_, err := lock.Acquire(ctx, "order_import")
	require.NoError(t, err)

	// Simulate the holder stalling past the TTL
	mr.FastForward(2 * time.Minute)

	release, err := lock.Acquire(ctx, "order_import")
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}

func TestRunLock_StaleReleaseDoesNotFreeNewHolder(t *testing.T) {
	lock, mr := newTestLock(t, time.Minute)
	ctx := context.Background()

	staleRelease, err := lock.Acquire(ctx, "order_import")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	// A new process takes the lock after expiry
	_, err = lock.Acquire(ctx, "order_import")
	require.NoError(t, err)

	// The stale holder's release must not remove the new holder's lock
	require.NoError(t, staleRelease(ctx))

	_, err = lock.Acquire(ctx, "order_import")
	assert.ErrorIs(t, err, ErrLockHeld)
}
