package providers

import (
	"net/http"
	"sort"
	"time"
)

// Registry maps vendor names to adapters. Adding a vendor means adding one
// adapter implementation and one entry here.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds the default registry with all five vendor adapters
// sharing a single HTTP client. A nil client gets a 60 second timeout.
func NewRegistry(httpClient *http.Client) *Registry {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	r := &Registry{adapters: make(map[string]Adapter)}
	for _, a := range []Adapter{
		NewOpenAIAdapter(httpClient),
		NewAnthropicAdapter(httpClient),
		NewGoogleAdapter(httpClient),
		NewGroqAdapter(httpClient),
		NewOpenRouterAdapter(httpClient),
	} {
		r.adapters[a.Name()] = a
	}
	return r
}

// Register adds or replaces an adapter. Used by tests to plug in fakes.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Name()] = a
}

// Get returns the adapter for a vendor name.
func (r *Registry) Get(vendor string) (Adapter, bool) {
	a, ok := r.adapters[vendor]
	return a, ok
}

// Vendors returns the registered vendor names, sorted.
func (r *Registry) Vendors() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
