package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/campaignstack/ai-gateway/internal/shared/models"
)

const googleBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GoogleAdapter handles the Google generative language API.
type GoogleAdapter struct {
	baseURL    string
	httpClient *http.Client
}

type googleRequest struct {
	Contents         []googleContent         `json:"contents"`
	GenerationConfig *googleGenerationConfig `json:"generationConfig,omitempty"`
}

type googleContent struct {
	Role  string       `json:"role"`
	Parts []googlePart `json:"parts"`
}

type googlePart struct {
	Text string `json:"text"`
}

type googleGenerationConfig struct {
	Temperature     *float32 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

type googleResponse struct {
	Candidates []struct {
		Content googleContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

// NewGoogleAdapter creates the adapter for Google's generative language API.
func NewGoogleAdapter(httpClient *http.Client) Adapter {
	return &GoogleAdapter{
		baseURL:    googleBaseURL,
		httpClient: httpClient,
	}
}

// Name returns the vendor identifier.
func (p *GoogleAdapter) Name() string {
	return VendorGoogle
}

// Call issues one generateContent request. Google has no system role and
// names the assistant role "model", so roles are remapped. Responses do not
// always carry usage metadata; when absent, token counts are estimated at
// four characters per token, rounding up, over the rendered prompt and the
// returned text.
func (p *GoogleAdapter) Call(ctx context.Context, cfg *models.VendorConfig, req *Request) (string, int, int, error) {
	body := googleRequest{Contents: make([]googleContent, 0, len(req.Messages))}

	var promptChars int
	for _, msg := range req.Messages {
		role := msg.Role
		switch role {
		case "assistant":
			role = "model"
		case "system":
			role = "user"
		}
		body.Contents = append(body.Contents, googleContent{
			Role:  role,
			Parts: []googlePart{{Text: msg.Content}},
		})
		promptChars += len(msg.Content)
	}

	if req.Temperature != nil || req.MaxTokens != nil {
		body.GenerationConfig = &googleGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		}
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return "", 0, 0, fmt.Errorf("marshal request: %w", err)
	}

	baseURL := p.baseURL
	if cfg.BaseURL != nil && *cfg.BaseURL != "" {
		baseURL = *cfg.BaseURL
	}
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", baseURL, cfg.Model, cfg.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", 0, 0, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", 0, 0, fmt.Errorf("Google API error: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", 0, 0, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", 0, 0, fmt.Errorf("Google API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp googleResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", 0, 0, fmt.Errorf("failed to parse response: %w", err)
	}

	var text string
	if len(resp.Candidates) > 0 {
		for _, part := range resp.Candidates[0].Content.Parts {
			text += part.Text
		}
	}

	promptTokens := resp.UsageMetadata.PromptTokenCount
	completionTokens := resp.UsageMetadata.CandidatesTokenCount
	if promptTokens == 0 && completionTokens == 0 {
		promptTokens = estimateTokens(promptChars)
		completionTokens = estimateTokens(len(text))
	}

	return text, promptTokens, completionTokens, nil
}

// estimateTokens approximates a token count from character length. The
// four-characters-per-token ratio is crude but kept on purpose: cost figures
// derived from it are established billing behavior.
func estimateTokens(chars int) int {
	return (chars + 3) / 4
}
