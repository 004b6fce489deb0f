package providers

import "net/http"

// GroqBaseURL is the Groq OpenAI-compatible endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// NewGroqAdapter creates the adapter for Groq, which speaks the OpenAI
// chat completions format at its own endpoint.
func NewGroqAdapter(httpClient *http.Client) Adapter {
	return &openAICompatible{
		name:       VendorGroq,
		baseURL:    GroqBaseURL,
		httpClient: httpClient,
	}
}
