package gateway

import (
	"context"
	"errors"

	gwerrors "github.com/campaignstack/ai-gateway/internal/gateway/errors"
	"github.com/campaignstack/ai-gateway/internal/gateway/providers"
	"github.com/campaignstack/ai-gateway/internal/shared/database"
)

// GenerateWithFallback tries the tenant's ordered vendor list for the given
// module, stopping at the first success. Without an enabled policy the list
// is just the vendor named in the request.
//
// Candidates run strictly one at a time: a cheaper or preferred vendor is
// never paid for after a later one already answered, and the usage log
// reflects the true number of attempts. Only vendor-side failures fall
// through to the next candidate; configuration and rate limit errors abort
// immediately, since retrying a different vendor cannot fix either.
func (o *Orchestrator) GenerateWithFallback(ctx context.Context, req *providers.Request, module string) (*providers.Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	candidates := []string{req.Vendor}

	policy, err := o.policies.GetFallbackPolicy(ctx, req.TenantID, module)
	switch {
	case err == nil:
		if policy.Enabled && len(policy.Vendors) > 0 {
			candidates = policy.Vendors
		}
	case errors.Is(err, database.ErrFallbackPolicyNotFound):
		// No policy: single-vendor list.
	default:
		o.logger.Warn("fallback policy lookup failed, using request vendor",
			"tenant", req.TenantID, "module", module, "error", err)
	}

	var lastErr error
	for i, vendor := range candidates {
		attempt := *req
		attempt.Vendor = vendor
		if module != "" {
			attempt.Module = module
		}

		resp, err := o.Generate(ctx, &attempt)
		if err == nil {
			return resp, nil
		}

		var perr *gwerrors.ProviderError
		if !errors.As(err, &perr) {
			return nil, err
		}

		lastErr = err
		o.logger.Warn("vendor call failed, trying next candidate",
			"tenant", req.TenantID,
			"vendor", vendor,
			"remaining", len(candidates)-i-1,
			"error", err)
	}

	return nil, &gwerrors.AllProvidersFailedError{Vendors: candidates, Err: lastErr}
}
