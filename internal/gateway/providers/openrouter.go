package providers

import "net/http"

// OpenRouterBaseURL is the OpenRouter OpenAI-compatible endpoint.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// NewOpenRouterAdapter creates the adapter for OpenRouter, an aggregator
// speaking the OpenAI chat completions format.
func NewOpenRouterAdapter(httpClient *http.Client) Adapter {
	return &openAICompatible{
		name:       VendorOpenRouter,
		baseURL:    OpenRouterBaseURL,
		httpClient: httpClient,
	}
}
