package ratelimit

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	gwerrors "github.com/campaignstack/ai-gateway/internal/gateway/errors"
	"github.com/campaignstack/ai-gateway/internal/shared/redis"
)

func newTestLimiter(t *testing.T, defaults Defaults) *Limiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redis.New(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return New(client, defaults)
}

func testDefaults() Defaults {
	return Defaults{
		MaxRequestsPerHour: 1000,
		MaxTokensPerDay:    1000000,
		MaxCostPerMonth:    100,
	}
}

func TestLimiter_FirstCallPasses(t *testing.T) {
	limiter := newTestLimiter(t, testDefaults())

	err := limiter.CheckAndReserve(context.Background(), "t1")
	require.NoError(t, err)

	state, err := limiter.State(context.Background(), "t1")
	require.NoError(t, err)
	require.Equal(t, int64(1), state.RequestsThisHour)
	require.Equal(t, int64(1000), state.MaxRequestsHour)
}

func TestLimiter_RequestLimit(t *testing.T) {
	defaults := testDefaults()
	defaults.MaxRequestsPerHour = 1
	limiter := newTestLimiter(t, defaults)
	ctx := context.Background()

	require.NoError(t, limiter.CheckAndReserve(ctx, "t2"))

	err := limiter.CheckAndReserve(ctx, "t2")
	var rlErr *gwerrors.RateLimitExceededError
	require.True(t, errors.As(err, &rlErr))
	require.Equal(t, gwerrors.DimensionRequests, rlErr.Dimension)
	require.Equal(t, "t2", rlErr.TenantID)

	// The rejected attempt still consumed a request slot.
	state, err := limiter.State(ctx, "t2")
	require.NoError(t, err)
	require.Equal(t, int64(2), state.RequestsThisHour)
}

func TestLimiter_CommitAccumulates(t *testing.T) {
	limiter := newTestLimiter(t, testDefaults())
	ctx := context.Background()

	require.NoError(t, limiter.CheckAndReserve(ctx, "t1"))

	counts := []int{100, 250, 7}
	var sum int64
	for _, n := range counts {
		require.NoError(t, limiter.Commit(ctx, "t1", n, 0.001))
		sum += int64(n)
	}

	state, err := limiter.State(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, sum, state.TokensToday)
	require.InDelta(t, 0.003, state.CostThisMonth, 1e-9)
}

func TestLimiter_TokenLimitUsesPriorTokens(t *testing.T) {
	defaults := testDefaults()
	defaults.MaxTokensPerDay = 100
	limiter := newTestLimiter(t, defaults)
	ctx := context.Background()

	// Under the limit: passes even though the upcoming call may exceed it,
	// since new-call tokens are unknown before the vendor responds.
	require.NoError(t, limiter.CheckAndReserve(ctx, "t1"))
	require.NoError(t, limiter.Commit(ctx, "t1", 99, 0))
	require.NoError(t, limiter.CheckAndReserve(ctx, "t1"))
	require.NoError(t, limiter.Commit(ctx, "t1", 50, 0))

	// Now the accumulated 149 >= 100 blocks the next call.
	err := limiter.CheckAndReserve(ctx, "t1")
	var rlErr *gwerrors.RateLimitExceededError
	require.True(t, errors.As(err, &rlErr))
	require.Equal(t, gwerrors.DimensionTokens, rlErr.Dimension)
}

func TestLimiter_CostLimit(t *testing.T) {
	defaults := testDefaults()
	defaults.MaxCostPerMonth = 0.01
	limiter := newTestLimiter(t, defaults)
	ctx := context.Background()

	require.NoError(t, limiter.CheckAndReserve(ctx, "t1"))
	require.NoError(t, limiter.Commit(ctx, "t1", 10, 0.02))

	err := limiter.CheckAndReserve(ctx, "t1")
	var rlErr *gwerrors.RateLimitExceededError
	require.True(t, errors.As(err, &rlErr))
	require.Equal(t, gwerrors.DimensionCost, rlErr.Dimension)
}

func TestLimiter_DimensionOrder(t *testing.T) {
	// When both requests and tokens are exhausted, requests wins: dimensions
	// are evaluated in a fixed order.
	defaults := Defaults{MaxRequestsPerHour: 1, MaxTokensPerDay: 1, MaxCostPerMonth: 100}
	limiter := newTestLimiter(t, defaults)
	ctx := context.Background()

	require.NoError(t, limiter.CheckAndReserve(ctx, "t1"))
	require.NoError(t, limiter.Commit(ctx, "t1", 10, 0))

	err := limiter.CheckAndReserve(ctx, "t1")
	var rlErr *gwerrors.RateLimitExceededError
	require.True(t, errors.As(err, &rlErr))
	require.Equal(t, gwerrors.DimensionRequests, rlErr.Dimension)
}

func TestLimiter_TenantsIndependent(t *testing.T) {
	defaults := testDefaults()
	defaults.MaxRequestsPerHour = 1
	limiter := newTestLimiter(t, defaults)
	ctx := context.Background()

	require.NoError(t, limiter.CheckAndReserve(ctx, "a"))
	require.Error(t, limiter.CheckAndReserve(ctx, "a"))

	// Tenant b is untouched by a's exhaustion.
	require.NoError(t, limiter.CheckAndReserve(ctx, "b"))
}
