// Package errors defines the gateway's error taxonomy. Callers and the
// fallback resolver branch on these types with errors.As.
package errors

import "fmt"

// Rate limit dimensions, in the order they are evaluated.
const (
	DimensionRequests = "requests"
	DimensionTokens   = "tokens"
	DimensionCost     = "cost"
)

// ConfigurationError indicates a missing or inactive vendor configuration
// for a tenant. Never retried.
type ConfigurationError struct {
	TenantID string
	Vendor   string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("vendor %s not usable for tenant %s: %s", e.Vendor, e.TenantID, e.Reason)
}

// RateLimitExceededError indicates an exhausted rate limit dimension.
// The gateway does not retry; the caller decides.
type RateLimitExceededError struct {
	TenantID  string
	Dimension string
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded for tenant %s: %s", e.TenantID, e.Dimension)
}

// ProviderError wraps a vendor-side failure (auth, quota, malformed
// response). Triggers fallback to the next candidate under
// GenerateWithFallback.
type ProviderError struct {
	Vendor string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Vendor, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// AllProvidersFailedError is terminal: every candidate in the fallback
// chain failed. It wraps only the final underlying error.
type AllProvidersFailedError struct {
	Vendors []string
	Err     error
}

func (e *AllProvidersFailedError) Error() string {
	return fmt.Sprintf("all providers failed (tried %d): %v", len(e.Vendors), e.Err)
}

func (e *AllProvidersFailedError) Unwrap() error {
	return e.Err
}

// CacheError marks a failure in the cache layer. It is logged and swallowed
// by the orchestrator; a broken cache must never fail a request.
type CacheError struct {
	Op  string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
