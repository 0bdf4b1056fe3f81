package config

import (
	"time"

	"listforge/internal/generator"
)

// GeneratorConfig configures the generative-model backend.
type GeneratorConfig struct {
	Provider string `yaml:"provider"` // openai, anthropic, gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"` // Go duration string, e.g. "60s"

	// RequestsPerSecond caps upstream calls across all concurrent runs.
	// 0 disables rate limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// DefaultGeneratorConfig returns sensible defaults.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Provider:          "openai",
		Timeout:           "60s",
		RequestsPerSecond: 2,
	}
}

// FactoryConfig converts to the generator package's factory input. An
// unparseable timeout falls back to the backend default.
func (c GeneratorConfig) FactoryConfig() generator.FactoryConfig {
	timeout, err := time.ParseDuration(c.Timeout)
	if err != nil {
		timeout = 0
	}
	return generator.FactoryConfig{
		Provider:          c.Provider,
		APIKey:            c.APIKey,
		BaseURL:           c.BaseURL,
		Model:             c.Model,
		Timeout:           timeout,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}
