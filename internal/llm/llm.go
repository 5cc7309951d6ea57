// Package llm abstracts the reasoning service. It is advisory only: every
// caller must tolerate a nil client, a transport failure, or garbage output.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

type Prompt struct {
	System string
	User   string
}

type Client interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
	Provider() string
	Model() string
}

type Config struct {
	Provider        string
	Model           string
	BaseURL         string
	APIKey          string
	Temperature     float64
	MaxOutputTokens int
	TimeoutSeconds  int
}

// New builds a client for the configured provider. An empty provider yields
// a nil client, which the decision engine treats as "always fall back".
func New(cfg Config) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		return nil, nil
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 20
	}

	switch provider {
	case "openai":
		apiKey := strings.TrimSpace(cfg.APIKey)
		if apiKey == "" {
			apiKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		}
		if apiKey == "" {
			return nil, errors.New("openai selected but no API key provided (OPENAI_API_KEY)")
		}
		model := strings.TrimSpace(cfg.Model)
		if model == "" {
			return nil, errors.New("openai selected but no model configured")
		}
		return newOpenAIClient(apiKey, cfg.BaseURL, model, cfg.Temperature, cfg.MaxOutputTokens, time.Duration(timeout)*time.Second), nil
	case "anthropic":
		apiKey := strings.TrimSpace(cfg.APIKey)
		if apiKey == "" {
			apiKey = strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
		}
		if apiKey == "" {
			return nil, errors.New("anthropic selected but no API key provided (ANTHROPIC_API_KEY)")
		}
		model := strings.TrimSpace(cfg.Model)
		if model == "" {
			return nil, errors.New("anthropic selected but no model configured")
		}
		return newAnthropicClient(apiKey, cfg.BaseURL, model, cfg.Temperature, cfg.MaxOutputTokens, time.Duration(timeout)*time.Second), nil
	case "ollama":
		model := strings.TrimSpace(cfg.Model)
		if model == "" {
			model = "llama3.2"
		}
		baseURL := strings.TrimSpace(cfg.BaseURL)
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return newOllamaClient(baseURL, model, cfg.Temperature, cfg.MaxOutputTokens, time.Duration(timeout)*time.Second), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
