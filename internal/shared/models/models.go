package models

import "time"

// VendorConfig holds a tenant's credentials and defaults for one LLM vendor.
// Rows are owned by the admin configuration service; the gateway only reads them.
type VendorConfig struct {
	ID        string
	TenantID  string
	Vendor    string
	APIKey    string
	BaseURL   *string
	Model     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FallbackPolicy is an ordered vendor preference list for a tenant and
// calling module. Disabled policies behave as if they did not exist.
type FallbackPolicy struct {
	ID        string
	TenantID  string
	Module    string
	Vendors   []string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UsageLogRecord is an append-only record of one generation attempt,
// successful or not. Failed attempts carry zero tokens and cost.
type UsageLogRecord struct {
	ID               string
	RequestID        string
	TenantID         string
	UserID           *string
	Vendor           string
	Model            string
	Module           string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CostUSD          float64
	LatencyMs        int
	CacheHit         bool
	Success          bool
	ErrorMessage     *string
	CreatedAt        time.Time
}

// AuditLogRecord mirrors each usage record with the who/what/when needed
// for compliance review. Never mutated.
type AuditLogRecord struct {
	ID        string
	RequestID string
	TenantID  string
	UserID    *string
	Action    string
	Vendor    string
	Model     string
	Module    string
	Success   bool
	Error     *string
	CreatedAt time.Time
}

// RateLimitState is the per-tenant counter snapshot as read from the
// durable store. Counters only grow; an external scheduled job clears them
// at window boundaries.
type RateLimitState struct {
	TenantID         string
	RequestsThisHour int64
	MaxRequestsHour  int64
	TokensToday      int64
	MaxTokensDay     int64
	CostThisMonth    float64
	MaxCostMonth     float64
}
