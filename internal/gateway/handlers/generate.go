// Package handlers exposes the gateway over HTTP. The handlers are plain
// callers of the orchestrator; the gateway itself stays a library.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	gwerrors "github.com/campaignstack/ai-gateway/internal/gateway/errors"
	"github.com/campaignstack/ai-gateway/internal/gateway/providers"
)

// Generator is the orchestrator surface the handler needs.
type Generator interface {
	Generate(ctx context.Context, req *providers.Request) (*providers.Response, error)
	GenerateWithFallback(ctx context.Context, req *providers.Request, module string) (*providers.Response, error)
}

type GenerateHandler struct {
	gateway Generator
}

func NewGenerateHandler(gateway Generator) *GenerateHandler {
	return &GenerateHandler{gateway: gateway}
}

type generateRequest struct {
	Vendor      string              `json:"vendor"`
	Messages    []providers.Message `json:"messages"`
	Temperature *float32            `json:"temperature,omitempty"`
	MaxTokens   *int                `json:"max_tokens,omitempty"`
	Module      string              `json:"module,omitempty"`
	UserID      *string             `json:"user_id,omitempty"`
	Fallback    bool                `json:"fallback,omitempty"`
}

// HandleGenerate handles POST /v1/generate.
func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := TenantFromContext(ctx)
	if !ok {
		http.Error(w, "missing tenant", http.StatusUnauthorized)
		return
	}

	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Vendor == "" || len(body.Messages) == 0 {
		http.Error(w, "vendor and messages are required", http.StatusBadRequest)
		return
	}

	req := &providers.Request{
		TenantID:    tenantID,
		Vendor:      body.Vendor,
		Messages:    body.Messages,
		Temperature: body.Temperature,
		MaxTokens:   body.MaxTokens,
		Module:      body.Module,
		UserID:      body.UserID,
	}

	var resp *providers.Response
	var err error
	if body.Fallback {
		resp, err = h.gateway.GenerateWithFallback(ctx, req, body.Module)
	} else {
		resp, err = h.gateway.Generate(ctx, req)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache-Hit", fmt.Sprintf("%v", resp.CacheHit))
	w.Header().Set("X-Cost-USD", fmt.Sprintf("%.6f", resp.CostUSD))
	w.Header().Set("X-Latency-Ms", fmt.Sprintf("%d", resp.LatencyMs))
	json.NewEncoder(w).Encode(resp)
}

// writeError maps the gateway error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		cfgErr  *gwerrors.ConfigurationError
		rlErr   *gwerrors.RateLimitExceededError
		provErr *gwerrors.ProviderError
		allErr  *gwerrors.AllProvidersFailedError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &cfgErr):
		status = http.StatusBadRequest
	case errors.As(err, &rlErr):
		status = http.StatusTooManyRequests
		w.Header().Set("Retry-After", "60")
	case errors.As(err, &allErr):
		status = http.StatusBadGateway
	case errors.As(err, &provErr):
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
