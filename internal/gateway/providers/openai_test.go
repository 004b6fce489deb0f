package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campaignstack/ai-gateway/internal/shared/models"
)

func TestOpenAICompatible_Call(t *testing.T) {
	var capturedPath, capturedAuth string
	var captured struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "pong"}}],
			"usage": {"prompt_tokens": 7, "completion_tokens": 2, "total_tokens": 9}
		}`))
	}))
	defer server.Close()

	adapter := NewOpenAIAdapter(server.Client())
	cfg := &models.VendorConfig{
		TenantID: "t1",
		Vendor:   VendorOpenAI,
		APIKey:   "sk-test",
		BaseURL:  strptr(server.URL),
		Model:    "gpt-4o-mini",
		Active:   true,
	}
	req := &Request{
		TenantID: "t1",
		Vendor:   VendorOpenAI,
		Messages: []Message{{Role: "user", Content: "ping"}},
	}

	text, promptTokens, completionTokens, err := adapter.Call(context.Background(), cfg, req)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if text != "pong" {
		t.Errorf("text = %q", text)
	}
	if promptTokens != 7 || completionTokens != 2 {
		t.Errorf("tokens = (%d, %d), want (7, 2)", promptTokens, completionTokens)
	}
	if !strings.HasSuffix(capturedPath, "/chat/completions") {
		t.Errorf("path = %q", capturedPath)
	}
	if capturedAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", capturedAuth)
	}
	if captured.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", captured.Model)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Content != "ping" {
		t.Errorf("messages = %+v", captured.Messages)
	}
}

func TestOpenAICompatible_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "chatcmpl-1", "choices": [], "usage": {}}`))
	}))
	defer server.Close()

	adapter := NewOpenAIAdapter(server.Client())
	cfg := &models.VendorConfig{TenantID: "t1", Vendor: VendorOpenAI, APIKey: "sk", BaseURL: strptr(server.URL), Model: "gpt-4o-mini"}
	req := &Request{TenantID: "t1", Vendor: VendorOpenAI, Messages: []Message{{Role: "user", Content: "hi"}}}

	if _, _, _, err := adapter.Call(context.Background(), cfg, req); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestOpenAICompatible_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited", "type": "requests"}}`))
	}))
	defer server.Close()

	adapter := NewOpenAIAdapter(server.Client())
	cfg := &models.VendorConfig{TenantID: "t1", Vendor: VendorOpenAI, APIKey: "sk", BaseURL: strptr(server.URL), Model: "gpt-4o-mini"}
	req := &Request{TenantID: "t1", Vendor: VendorOpenAI, Messages: []Message{{Role: "user", Content: "hi"}}}

	if _, _, _, err := adapter.Call(context.Background(), cfg, req); err == nil {
		t.Fatal("expected error for 429 response")
	}
}
