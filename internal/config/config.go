// Package config holds the YAML-backed configuration for listforge: the
// generator backend, the coordinator tunables, the harness, and the
// telemetry sinks. Environment variables override file values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Generator   GeneratorConfig   `yaml:"generator"`
	Coordinator CoordinatorConfig `yaml:"coordinator"`
	Harness     HarnessConfig     `yaml:"harness"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// Default returns a fully populated Config with production defaults.
func Default() *Config {
	return &Config{
		Generator:   DefaultGeneratorConfig(),
		Coordinator: DefaultCoordinatorConfig(),
		Harness:     DefaultHarnessConfig(),
		Telemetry:   DefaultTelemetryConfig(),
	}
}

// Load reads YAML config from path, layered over defaults, then applies
// environment overrides. An empty path yields defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides layers environment variables over the loaded config.
// A configured provider only honors its own env key; an exported key for a
// different backend must not flip the provider. With no provider set, keys
// select one with later-wins precedence: OPENAI, ANTHROPIC, GEMINI.
func (c *Config) applyEnvOverrides() {
	envKeys := map[string]string{
		"openai":    os.Getenv("OPENAI_API_KEY"),
		"anthropic": os.Getenv("ANTHROPIC_API_KEY"),
		"gemini":    os.Getenv("GEMINI_API_KEY"),
	}
	if c.Generator.Provider != "" {
		if key := envKeys[c.Generator.Provider]; key != "" {
			c.Generator.APIKey = key
		}
	} else {
		for _, provider := range []string{"openai", "anthropic", "gemini"} {
			if key := envKeys[provider]; key != "" {
				c.Generator.APIKey = key
				c.Generator.Provider = provider
			}
		}
	}
	if path := os.Getenv("LISTFORGE_TELEMETRY"); path != "" {
		c.Telemetry.LogPath = path
	}
	if dir := os.Getenv("LISTFORGE_RESULTS_DIR"); dir != "" {
		c.Harness.ResultsDir = dir
	}
}

// Validate rejects configurations the coordinator's input validation
// would reject later, so misconfiguration fails at startup.
func (c *Config) Validate() error {
	if err := c.Coordinator.validate(); err != nil {
		return err
	}
	return c.Harness.validate()
}
