package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter_Unlimited(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, rl.Wait(context.Background()))
	}
}

// TestRateLimiter_BurstThenThrottle はバースト分を即時に許可し、それ以降は待機させることを検証します。
func TestRateLimiter_BurstThenThrottle(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(10)
	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, rl.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond, "burst should not wait")

	require.NoError(t, rl.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond, "11th call should be throttled")
}

func TestRateLimiter_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, NewRateLimiter(1).Wait(ctx))
	assert.Error(t, NewRateLimiter(0).Wait(ctx))
}
