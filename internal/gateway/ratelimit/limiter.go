// Package ratelimit gates vendor calls on per-tenant durable counters:
// requests per hour, tokens per day and cost per month. The check/commit
// split keeps failed vendor calls from inflating token and cost counters,
// while every attempt consumes one hourly request slot.
//
// The counters only ever grow. Window rollover is owned by an external
// scheduled job that clears the hash; the gateway never resets anything.
// Two concurrent calls can both pass the check before either commits, so a
// limit may be transiently overshot by a small margin. The limits are
// advisory guardrails, not a billing boundary.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"

	gwerrors "github.com/campaignstack/ai-gateway/internal/gateway/errors"
	"github.com/campaignstack/ai-gateway/internal/shared/models"
	"github.com/campaignstack/ai-gateway/internal/shared/redis"
)

// Hash field names under ratelimit:{tenant}.
const (
	fieldRequestsHour    = "requests_hour"
	fieldTokensDay       = "tokens_day"
	fieldCostMonth       = "cost_month"
	fieldMaxRequestsHour = "max_requests_hour"
	fieldMaxTokensDay    = "max_tokens_day"
	fieldMaxCostMonth    = "max_cost_month"
)

// Defaults are the system-wide limits seeded for a tenant on first use.
type Defaults struct {
	MaxRequestsPerHour int64
	MaxTokensPerDay    int64
	MaxCostPerMonth    float64
}

// Limiter evaluates and updates per-tenant counters in Redis.
type Limiter struct {
	redis    *redis.Client
	defaults Defaults
}

// New creates a limiter with the given system defaults.
func New(redisClient *redis.Client, defaults Defaults) *Limiter {
	return &Limiter{redis: redisClient, defaults: defaults}
}

func stateKey(tenantID string) string {
	return fmt.Sprintf("ratelimit:%s", tenantID)
}

// CheckAndReserve consumes one hourly request slot and evaluates the three
// dimensions in order: requests per hour, tokens per day (against tokens
// already accumulated, since the new call's count is unknown until the
// vendor responds) and cost per month. It returns a RateLimitExceededError
// naming the first exhausted dimension. Limits for a new tenant are seeded
// from the defaults before the check, so a first call always passes.
func (l *Limiter) CheckAndReserve(ctx context.Context, tenantID string) error {
	key := stateKey(tenantID)

	if err := l.ensureDefaults(ctx, key); err != nil {
		return fmt.Errorf("seed rate limit state: %w", err)
	}

	requests, err := l.redis.HIncrBy(ctx, key, fieldRequestsHour, 1)
	if err != nil {
		return fmt.Errorf("reserve request slot: %w", err)
	}

	state, err := l.read(ctx, tenantID)
	if err != nil {
		return err
	}

	if requests > state.MaxRequestsHour {
		return &gwerrors.RateLimitExceededError{TenantID: tenantID, Dimension: gwerrors.DimensionRequests}
	}
	if state.TokensToday >= state.MaxTokensDay {
		return &gwerrors.RateLimitExceededError{TenantID: tenantID, Dimension: gwerrors.DimensionTokens}
	}
	if state.CostThisMonth >= state.MaxCostMonth {
		return &gwerrors.RateLimitExceededError{TenantID: tenantID, Dimension: gwerrors.DimensionCost}
	}

	return nil
}

// Commit adds a successful call's token count and cost to the tenant's
// counters. The request slot was already consumed by CheckAndReserve.
func (l *Limiter) Commit(ctx context.Context, tenantID string, tokens int, costUSD float64) error {
	key := stateKey(tenantID)

	if _, err := l.redis.HIncrBy(ctx, key, fieldTokensDay, int64(tokens)); err != nil {
		return fmt.Errorf("commit tokens: %w", err)
	}
	if _, err := l.redis.HIncrByFloat(ctx, key, fieldCostMonth, costUSD); err != nil {
		return fmt.Errorf("commit cost: %w", err)
	}
	return nil
}

// State returns the tenant's current counters and limits.
func (l *Limiter) State(ctx context.Context, tenantID string) (*models.RateLimitState, error) {
	return l.read(ctx, tenantID)
}

func (l *Limiter) ensureDefaults(ctx context.Context, key string) error {
	if err := l.redis.HSetNX(ctx, key, fieldMaxRequestsHour, l.defaults.MaxRequestsPerHour); err != nil {
		return err
	}
	if err := l.redis.HSetNX(ctx, key, fieldMaxTokensDay, l.defaults.MaxTokensPerDay); err != nil {
		return err
	}
	return l.redis.HSetNX(ctx, key, fieldMaxCostMonth, l.defaults.MaxCostPerMonth)
}

func (l *Limiter) read(ctx context.Context, tenantID string) (*models.RateLimitState, error) {
	fields, err := l.redis.HGetAll(ctx, stateKey(tenantID))
	if err != nil {
		return nil, fmt.Errorf("read rate limit state: %w", err)
	}

	state := &models.RateLimitState{
		TenantID:        tenantID,
		MaxRequestsHour: l.defaults.MaxRequestsPerHour,
		MaxTokensDay:    l.defaults.MaxTokensPerDay,
		MaxCostMonth:    l.defaults.MaxCostPerMonth,
	}

	state.RequestsThisHour = parseInt(fields[fieldRequestsHour], 0)
	state.TokensToday = parseInt(fields[fieldTokensDay], 0)
	state.CostThisMonth = parseFloat(fields[fieldCostMonth], 0)
	state.MaxRequestsHour = parseInt(fields[fieldMaxRequestsHour], state.MaxRequestsHour)
	state.MaxTokensDay = parseInt(fields[fieldMaxTokensDay], state.MaxTokensDay)
	state.MaxCostMonth = parseFloat(fields[fieldMaxCostMonth], state.MaxCostMonth)

	return state, nil
}

func parseInt(s string, fallback int64) int64 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseFloat(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}
