// Package gateway orchestrates text generation across LLM vendors: prompt
// cache, rate limiting, adapter dispatch, cost accounting and usage logging
// behind a single Generate call, with ordered fallback on top.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campaignstack/ai-gateway/internal/gateway/cache"
	gwerrors "github.com/campaignstack/ai-gateway/internal/gateway/errors"
	"github.com/campaignstack/ai-gateway/internal/gateway/pricing"
	"github.com/campaignstack/ai-gateway/internal/gateway/providers"
	"github.com/campaignstack/ai-gateway/internal/shared/database"
	"github.com/campaignstack/ai-gateway/internal/shared/metrics"
	"github.com/campaignstack/ai-gateway/internal/shared/models"
)

// CacheStore is the prompt cache consumed by the orchestrator. Failures are
// never fatal: a broken cache degrades to a miss.
type CacheStore interface {
	Get(ctx context.Context, tenantID, vendor, hash string) (*cache.Entry, bool, error)
	Put(ctx context.Context, tenantID, vendor, hash, prompt, response, model string, totalTokens int, ttl time.Duration) error
}

// RateLimiter gates non-cached vendor calls. CheckAndReserve consumes one
// request slot whatever the outcome; Commit runs only after vendor success.
type RateLimiter interface {
	CheckAndReserve(ctx context.Context, tenantID string) error
	Commit(ctx context.Context, tenantID string, tokens int, costUSD float64) error
}

// UsageLogger records exactly one usage record per call attempt.
type UsageLogger interface {
	Record(ctx context.Context, rec *models.UsageLogRecord) error
}

// ConfigStore is the read-only vendor configuration lookup. Absent rows are
// reported with database.ErrVendorConfigNotFound.
type ConfigStore interface {
	GetVendorConfig(ctx context.Context, tenantID, vendor string) (*models.VendorConfig, error)
}

// PolicyStore is the read-only fallback policy lookup. Absent rows are
// reported with database.ErrFallbackPolicyNotFound.
type PolicyStore interface {
	GetFallbackPolicy(ctx context.Context, tenantID, module string) (*models.FallbackPolicy, error)
}

// Config carries the orchestrator's collaborators. All durable state lives
// behind the store interfaces; the orchestrator itself is stateless per call
// and safe for concurrent use.
type Config struct {
	Configs  ConfigStore
	Policies PolicyStore
	Cache    CacheStore
	Limiter  RateLimiter
	Usage    UsageLogger
	Adapters *providers.Registry
	Pricing  *pricing.Table
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// Orchestrator is the gateway façade. Construct it once at startup and pass
// it to callers explicitly.
type Orchestrator struct {
	configs  ConfigStore
	policies PolicyStore
	cache    CacheStore
	limiter  RateLimiter
	usage    UsageLogger
	adapters *providers.Registry
	pricing  *pricing.Table
	cacheTTL time.Duration
	logger   *slog.Logger
}

// New creates an orchestrator from its collaborators.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Orchestrator{
		configs:  cfg.Configs,
		policies: cfg.Policies,
		cache:    cfg.Cache,
		limiter:  cfg.Limiter,
		usage:    cfg.Usage,
		adapters: cfg.Adapters,
		pricing:  cfg.Pricing,
		cacheTTL: ttl,
		logger:   logger,
	}
}

// Generate runs one completion call against the vendor named in the request:
// cache lookup, vendor config, rate check, adapter call, cost computation,
// best-effort cache write, usage log, rate commit. Every attempt, hit, miss
// or failure, writes exactly one usage record.
func (o *Orchestrator) Generate(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	start := time.Now()

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	hash := cache.HashMessages(req.Messages)

	// The store can return a live entry together with an error when only the
	// hit-counter write-back failed; the hit is still served.
	entry, found, err := o.cache.Get(ctx, req.TenantID, req.Vendor, hash)
	if err != nil {
		if found {
			o.logger.Warn("cache hit-count update failed",
				"tenant", req.TenantID, "vendor", req.Vendor, "error", err)
		} else {
			o.logger.Warn("cache lookup failed, treating as miss",
				"tenant", req.TenantID, "vendor", req.Vendor, "error", err)
		}
	}
	if found {
		metrics.CacheHits.Inc()
		metrics.GenerationRequests.WithLabelValues(req.Vendor, "cache_hit").Inc()

		resp := &providers.Response{
			Text:        entry.Response,
			Vendor:      req.Vendor,
			Model:       entry.Model,
			TotalTokens: entry.TotalTokens,
			LatencyMs:   int(time.Since(start).Milliseconds()),
			CacheHit:    true,
		}
		// Cache hits are free: the usage record reports zero tokens and cost.
		o.logUsage(ctx, req, entry.Model, nil, true, start, nil)
		return resp, nil
	}
	metrics.CacheMisses.Inc()

	vcfg, err := o.configs.GetVendorConfig(ctx, req.TenantID, req.Vendor)
	if err != nil {
		if errors.Is(err, database.ErrVendorConfigNotFound) {
			err = &gwerrors.ConfigurationError{TenantID: req.TenantID, Vendor: req.Vendor, Reason: "not configured"}
		} else {
			err = fmt.Errorf("load vendor config: %w", err)
		}
		metrics.GenerationRequests.WithLabelValues(req.Vendor, "config_error").Inc()
		o.logUsage(ctx, req, "", nil, false, start, err)
		return nil, err
	}
	if !vcfg.Active {
		cerr := &gwerrors.ConfigurationError{TenantID: req.TenantID, Vendor: req.Vendor, Reason: "inactive"}
		metrics.GenerationRequests.WithLabelValues(req.Vendor, "config_error").Inc()
		o.logUsage(ctx, req, vcfg.Model, nil, false, start, cerr)
		return nil, cerr
	}

	adapter, ok := o.adapters.Get(req.Vendor)
	if !ok {
		cerr := &gwerrors.ConfigurationError{TenantID: req.TenantID, Vendor: req.Vendor, Reason: "unknown vendor"}
		metrics.GenerationRequests.WithLabelValues(req.Vendor, "config_error").Inc()
		o.logUsage(ctx, req, vcfg.Model, nil, false, start, cerr)
		return nil, cerr
	}

	if err := o.limiter.CheckAndReserve(ctx, req.TenantID); err != nil {
		var rlErr *gwerrors.RateLimitExceededError
		if errors.As(err, &rlErr) {
			metrics.RateLimitRejections.WithLabelValues(rlErr.Dimension).Inc()
			metrics.GenerationRequests.WithLabelValues(req.Vendor, "rate_limited").Inc()
		}
		o.logUsage(ctx, req, vcfg.Model, nil, false, start, err)
		return nil, err
	}

	text, promptTokens, completionTokens, err := adapter.Call(ctx, vcfg, req)
	if err != nil {
		perr := &gwerrors.ProviderError{Vendor: req.Vendor, Err: err}
		metrics.GenerationRequests.WithLabelValues(req.Vendor, "error").Inc()
		o.logUsage(ctx, req, vcfg.Model, nil, false, start, perr)
		return nil, perr
	}

	cost := o.pricing.Cost(req.Vendor, vcfg.Model, promptTokens, completionTokens)
	totalTokens := promptTokens + completionTokens

	resp := &providers.Response{
		Text:             text,
		Vendor:           req.Vendor,
		Model:            vcfg.Model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      totalTokens,
		CostUSD:          cost,
		LatencyMs:        int(time.Since(start).Milliseconds()),
	}

	if err := o.cache.Put(ctx, req.TenantID, req.Vendor, hash, renderPrompt(req.Messages), text, vcfg.Model, totalTokens, o.cacheTTL); err != nil {
		o.logger.Warn("cache write failed",
			"tenant", req.TenantID, "vendor", req.Vendor, "error", err)
	}

	o.logUsage(ctx, req, vcfg.Model, resp, false, start, nil)

	if err := o.limiter.Commit(ctx, req.TenantID, totalTokens, cost); err != nil {
		o.logger.Warn("rate limit commit failed",
			"tenant", req.TenantID, "vendor", req.Vendor, "error", err)
	}

	metrics.GenerationRequests.WithLabelValues(req.Vendor, "success").Inc()
	metrics.TokensConsumed.WithLabelValues(req.Vendor).Add(float64(totalTokens))
	metrics.CostUSD.WithLabelValues(req.Vendor).Add(cost)

	return resp, nil
}

// validateRequest rejects structurally invalid requests before the call
// enters the state machine. These rejections are not call attempts: they
// produce no usage record and return plain errors outside the taxonomy.
func validateRequest(req *providers.Request) error {
	if req == nil {
		return fmt.Errorf("request is nil")
	}
	if req.TenantID == "" {
		return fmt.Errorf("tenant id is required")
	}
	if req.Vendor == "" {
		return fmt.Errorf("vendor is required")
	}
	if len(req.Messages) == 0 {
		return fmt.Errorf("messages is required")
	}
	return nil
}

// logUsage writes the single usage record for an attempt. Logging failures
// must not fail the call, so they are only logged.
func (o *Orchestrator) logUsage(ctx context.Context, req *providers.Request, model string, resp *providers.Response, cacheHit bool, start time.Time, callErr error) {
	rec := &models.UsageLogRecord{
		TenantID:  req.TenantID,
		UserID:    req.UserID,
		Vendor:    req.Vendor,
		Model:     model,
		Module:    req.Module,
		LatencyMs: int(time.Since(start).Milliseconds()),
		CacheHit:  cacheHit,
		Success:   callErr == nil,
	}

	if resp != nil {
		rec.PromptTokens = resp.PromptTokens
		rec.CompletionTokens = resp.CompletionTokens
		rec.TotalTokens = resp.TotalTokens
		rec.CostUSD = resp.CostUSD
	}

	if callErr != nil {
		msg := callErr.Error()
		rec.ErrorMessage = &msg
	}

	if err := o.usage.Record(ctx, rec); err != nil {
		o.logger.Error("usage log write failed",
			"tenant", req.TenantID, "vendor", req.Vendor, "error", err)
	}
}

// renderPrompt flattens the message list into the raw prompt text stored on
// cache entries for debugging.
func renderPrompt(messages []providers.Message) string {
	var out string
	for i, m := range messages {
		if i > 0 {
			out += "\n"
		}
		out += m.Role + ": " + m.Content
	}
	return out
}
