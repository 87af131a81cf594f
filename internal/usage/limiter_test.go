package usage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterAllowsBurstThenRejects(t *testing.T) {
	limiter := NewMemoryLimiter(5, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Consume(ctx, "user:1"), "request %d within the burst", i+1)
	}

	err := limiter.Consume(ctx, "user:1")
	var exceeded *LimitExceededError
	require.ErrorAs(t, err, &exceeded)
	require.Equal(t, "user:1", exceeded.Key)
	require.Greater(t, exceeded.RetryAfter, time.Duration(0))
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	require.NoError(t, limiter.Consume(ctx, "user:1"))
	require.Error(t, limiter.Consume(ctx, "user:1"))
	require.NoError(t, limiter.Consume(ctx, "user:2"))
}

func TestCostKnownAndUnknownModels(t *testing.T) {
	require.InDelta(t, 0.000375, Cost("gpt-4o-mini", 1000), 1e-9)
	require.InDelta(t, 0.000375, Cost("gpt-4o-mini-2024-07-18", 1000), 1e-9, "dated variants use the base rate")
	require.InDelta(t, 0.0075, Cost("gpt-4o", 1000), 1e-9, "gpt-4o must not match the gpt-4 rate by prefix")
	require.InDelta(t, 0.002, Cost("some-new-model", 1000), 1e-9, "unknown models use the default rate")
}

func TestCostRounding(t *testing.T) {
	// 123 tokens at the gpt-4o-mini rate is 0.000046125; six decimals.
	require.Equal(t, 0.000046, Cost("gpt-4o-mini", 123))
}
