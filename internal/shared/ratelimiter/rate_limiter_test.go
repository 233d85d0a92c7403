package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsUpToLimitWithoutWaiting(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(3, time.Hour)
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestRateLimiter_BlocksUntilCancelled(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, time.Hour)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := rl.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimiter_ResetsAfterInterval(t *testing.T) {
	t.Parallel()

	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return current }
	rl.lastReset = current

	require.NoError(t, rl.Wait(context.Background()))
	current = current.Add(2 * time.Minute)
	start := time.Now()
	require.NoError(t, rl.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestRateLimiter_ZeroLimitDisabled(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(0, time.Hour)
	for i := 0; i < 10; i++ {
		require.NoError(t, rl.Wait(context.Background()))
	}
}

func TestFixedDelay(t *testing.T) {
	t.Parallel()

	t.Run("waits for the delay", func(t *testing.T) {
		t.Parallel()
		start := time.Now()
		require.NoError(t, FixedDelay{Delay: 15 * time.Millisecond}.Wait(context.Background()))
		assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
	})

	t.Run("cancelled context returns early", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := FixedDelay{Delay: time.Hour}.Wait(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
