package providers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/campaignstack/ai-gateway/internal/shared/models"
)

// openAICompatible implements Adapter for any vendor speaking the OpenAI
// chat completions wire format. OpenAI, Groq and OpenRouter all share it,
// differing only in name and base URL.
type openAICompatible struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIAdapter creates the adapter for the OpenAI API.
func NewOpenAIAdapter(httpClient *http.Client) Adapter {
	return &openAICompatible{
		name:       VendorOpenAI,
		httpClient: httpClient,
	}
}

// Name returns the vendor identifier.
func (p *openAICompatible) Name() string {
	return p.name
}

// Call issues one chat completion request using the tenant's credentials.
func (p *openAICompatible) Call(ctx context.Context, cfg *models.VendorConfig, req *Request) (string, int, int, error) {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.HTTPClient = p.httpClient
	switch {
	case cfg.BaseURL != nil && *cfg.BaseURL != "":
		clientCfg.BaseURL = *cfg.BaseURL
	case p.baseURL != "":
		clientCfg.BaseURL = p.baseURL
	}
	client := openai.NewClientWithConfig(clientCfg)

	chatReq := openai.ChatCompletionRequest{
		Model:    cfg.Model,
		Messages: toOpenAIMessages(req.Messages),
	}
	if req.Temperature != nil {
		chatReq.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		chatReq.MaxTokens = *req.MaxTokens
	}

	resp, err := client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", 0, 0, fmt.Errorf("%s API error: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", 0, 0, fmt.Errorf("%s API returned no choices", p.name)
	}

	return resp.Choices[0].Message.Content, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, nil
}

func toOpenAIMessages(msgs []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return out
}
