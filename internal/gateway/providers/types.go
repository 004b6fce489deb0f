// Package providers contains the vendor adapters. Each adapter translates
// the gateway's normalized request into one vendor's wire format and maps
// the vendor response back to plain text plus token counts.
package providers

import (
	"context"

	"github.com/campaignstack/ai-gateway/internal/shared/models"
)

// Vendor identifiers, used as registry keys and vendor_configs rows.
const (
	VendorOpenAI     = "openai"
	VendorAnthropic  = "anthropic"
	VendorGoogle     = "google"
	VendorGroq       = "groq"
	VendorOpenRouter = "openrouter"
)

// Message is one turn of a conversation. Role is "system", "user" or
// "assistant"; a system message, if present, is singular and comes first.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the vendor-agnostic generation request. Immutable once built.
type Request struct {
	TenantID    string    `json:"tenant_id"`
	Vendor      string    `json:"vendor"`
	Messages    []Message `json:"messages"`
	Temperature *float32  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Module      string    `json:"module,omitempty"`
	UserID      *string   `json:"user_id,omitempty"`
}

// Response is the vendor-agnostic generation result. It is returned to the
// caller and logged, never persisted as an entity.
type Response struct {
	Text             string  `json:"text"`
	Vendor           string  `json:"vendor"`
	Model            string  `json:"model"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	CostUSD          float64 `json:"cost_usd"`
	LatencyMs        int     `json:"latency_ms"`
	CacheHit         bool    `json:"cache_hit"`
}

// Adapter is implemented once per vendor. Call issues a single generation
// request using the tenant's credentials and returns the generated text
// with prompt/completion token counts. Errors are vendor-specific failures
// and are wrapped into ProviderError by the orchestrator.
type Adapter interface {
	Name() string
	Call(ctx context.Context, cfg *models.VendorConfig, req *Request) (text string, promptTokens, completionTokens int, err error)
}
