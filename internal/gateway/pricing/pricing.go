// Package pricing maps (vendor, model) pairs to per-1000-token prices and
// computes call costs. The table is maintained by hand; an optional YAML
// override file lets operators correct prices without a release.
package pricing

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ModelPricing is the USD price per 1000 tokens for one model.
type ModelPricing struct {
	Vendor          string  `yaml:"vendor"`
	Model           string  `yaml:"model"`
	InputCostPer1K  float64 `yaml:"input_per_1k"`
	OutputCostPer1K float64 `yaml:"output_per_1k"`
}

// DefaultPair is applied to unknown (vendor, model) pairs. Deliberately
// conservative so an unpriced model overstates rather than understates spend.
var DefaultPair = ModelPricing{InputCostPer1K: 0.01, OutputCostPer1K: 0.03}

// DefaultPricing is the built-in table. Prices are USD per 1000 tokens.
var DefaultPricing = []ModelPricing{
	// OpenAI
	{Vendor: "openai", Model: "gpt-4o", InputCostPer1K: 0.005, OutputCostPer1K: 0.015},
	{Vendor: "openai", Model: "gpt-4o-mini", InputCostPer1K: 0.00015, OutputCostPer1K: 0.0006},
	{Vendor: "openai", Model: "gpt-4-turbo", InputCostPer1K: 0.01, OutputCostPer1K: 0.03},
	{Vendor: "openai", Model: "gpt-4", InputCostPer1K: 0.03, OutputCostPer1K: 0.06},
	{Vendor: "openai", Model: "gpt-3.5-turbo", InputCostPer1K: 0.0005, OutputCostPer1K: 0.0015},

	// Anthropic
	{Vendor: "anthropic", Model: "claude-3-5-sonnet-20241022", InputCostPer1K: 0.003, OutputCostPer1K: 0.015},
	{Vendor: "anthropic", Model: "claude-3-5-haiku-20241022", InputCostPer1K: 0.0008, OutputCostPer1K: 0.004},
	{Vendor: "anthropic", Model: "claude-3-opus-20240229", InputCostPer1K: 0.015, OutputCostPer1K: 0.075},
	{Vendor: "anthropic", Model: "claude-3-haiku-20240307", InputCostPer1K: 0.00025, OutputCostPer1K: 0.00125},

	// Google
	{Vendor: "google", Model: "gemini-1.5-pro", InputCostPer1K: 0.00125, OutputCostPer1K: 0.005},
	{Vendor: "google", Model: "gemini-1.5-flash", InputCostPer1K: 0.000075, OutputCostPer1K: 0.0003},
	{Vendor: "google", Model: "gemini-2.0-flash", InputCostPer1K: 0.0001, OutputCostPer1K: 0.0004},

	// Groq
	{Vendor: "groq", Model: "llama-3.3-70b", InputCostPer1K: 0.00059, OutputCostPer1K: 0.00079},
	{Vendor: "groq", Model: "llama-3.3-70b-versatile", InputCostPer1K: 0.00059, OutputCostPer1K: 0.00079},
	{Vendor: "groq", Model: "llama-3.1-8b-instant", InputCostPer1K: 0.00005, OutputCostPer1K: 0.00008},
	{Vendor: "groq", Model: "mixtral-8x7b-32768", InputCostPer1K: 0.00024, OutputCostPer1K: 0.00024},

	// OpenRouter (aggregator list prices)
	{Vendor: "openrouter", Model: "openai/gpt-4o", InputCostPer1K: 0.005, OutputCostPer1K: 0.015},
	{Vendor: "openrouter", Model: "anthropic/claude-3.5-sonnet", InputCostPer1K: 0.003, OutputCostPer1K: 0.015},
	{Vendor: "openrouter", Model: "meta-llama/llama-3.1-70b-instruct", InputCostPer1K: 0.0004, OutputCostPer1K: 0.0004},
}

// Table answers cost lookups. It is immutable after construction and safe
// for concurrent use.
type Table struct {
	pricing map[string]ModelPricing
}

// NewTable builds a table from the given entries, falling back to
// DefaultPricing when nil.
func NewTable(entries []ModelPricing) *Table {
	if entries == nil {
		entries = DefaultPricing
	}

	t := &Table{pricing: make(map[string]ModelPricing, len(entries))}
	for _, p := range entries {
		t.pricing[key(p.Vendor, p.Model)] = p
	}
	return t
}

// LoadTable builds a table from the built-in entries merged with a YAML
// override file. Overrides win on (vendor, model) collisions.
func LoadTable(overridePath string) (*Table, error) {
	t := NewTable(nil)
	if overridePath == "" {
		return t, nil
	}

	data, err := os.ReadFile(overridePath)
	if err != nil {
		return nil, fmt.Errorf("read pricing file: %w", err)
	}

	var overrides []ModelPricing
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse pricing file: %w", err)
	}

	for _, p := range overrides {
		t.pricing[key(p.Vendor, p.Model)] = p
	}
	return t, nil
}

// Cost returns the USD cost of a call. The (vendor, model) lookup is
// case-insensitive; unknown pairs use the conservative default pair rather
// than failing. Pure function.
func (t *Table) Cost(vendor, model string, promptTokens, completionTokens int) float64 {
	p, ok := t.pricing[key(vendor, model)]
	if !ok {
		p = DefaultPair
	}

	inputCost := float64(promptTokens) / 1000.0 * p.InputCostPer1K
	outputCost := float64(completionTokens) / 1000.0 * p.OutputCostPer1K
	return inputCost + outputCost
}

func key(vendor, model string) string {
	return strings.ToLower(vendor) + "/" + strings.ToLower(model)
}
