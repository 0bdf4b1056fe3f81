package generator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// FactoryConfig selects and configures a Generator backend.
type FactoryConfig struct {
	Provider string // openai, anthropic, gemini
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration

	// RequestsPerSecond caps upstream call rate across all concurrent
	// runs. 0 disables rate limiting.
	RequestsPerSecond float64
}

// New constructs the Generator named by cfg.Provider, wrapped with a rate
// limiter when one is configured.
func New(ctx context.Context, cfg FactoryConfig) (Generator, error) {
	var gen Generator

	switch cfg.Provider {
	case "openai", "":
		oc := DefaultOpenAIConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oc.BaseURL = cfg.BaseURL
		}
		if cfg.Model != "" {
			oc.Model = cfg.Model
		}
		if cfg.Timeout > 0 {
			oc.Timeout = cfg.Timeout
		}
		gen = NewOpenAIClient(oc)

	case "anthropic":
		ac := DefaultAnthropicConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			ac.BaseURL = cfg.BaseURL
		}
		if cfg.Model != "" {
			ac.Model = cfg.Model
		}
		if cfg.Timeout > 0 {
			ac.Timeout = cfg.Timeout
		}
		gen = NewAnthropicClient(ac)

	case "gemini":
		gc, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		gen = gc

	default:
		return nil, fmt.Errorf("unknown generator provider: %s", cfg.Provider)
	}

	if cfg.RequestsPerSecond > 0 {
		gen = Limited(gen, rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1))
	}
	return gen, nil
}
