// Package llm talks to the text-generation collaborator that condenses
// page content and suggests categories. Calls are blocking, synchronous
// and single-attempt: on timeout or error the caller substitutes a
// fallback value and moves on.
package llm

import (
	"context"
	"time"

	"github.com/ppiankov/linkarium/internal/model"
)

// Provider is a text-generation backend.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Generate returns the completion for a prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// IsAvailable checks if the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// Config holds provider configuration.
type Config struct {
	// Provider name: "ollama", "openai"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g. Ollama)
	BaseURL string

	// Timeout per generation call
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(cfg model.LLMConfig) Config {
	return Config{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		MaxTokens: cfg.MaxTokens,
	}
}

const systemPrompt = "You are a precise assistant that condenses and categorizes web page content. Answer with only what is asked, no preamble."
