package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/keypad/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_Exclusive(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "sess", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:sess"))

	// A second caller waits until its context gives up.
	shortCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(shortCtx, "sess", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:sess"))

	unlock2, err := locker.Lock(ctx, "sess", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestLocker_UnlockDoesNotStealForeignLock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "sess", time.Second)
	require.NoError(t, err)

	// Our lock expires and another owner takes it.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("test:lock:sess", "someone-else"))

	require.NoError(t, unlock(ctx))
	got, err := mr.Get("test:lock:sess")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
