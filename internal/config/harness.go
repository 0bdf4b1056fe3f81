package config

import "fmt"

// HarnessConfig configures acceptance runs.
type HarnessConfig struct {
	// SeedRing overrides the built-in seed ring when non-empty. The
	// ring is versioned; change it deliberately.
	SeedRing []int64 `yaml:"seed_ring,omitempty"`

	// Concurrency bounds how many seeds run at once. 1 is strictly
	// sequential.
	Concurrency int `yaml:"concurrency"`

	// ResultsDir is where suite reports are written.
	ResultsDir string `yaml:"results_dir"`
}

// DefaultHarnessConfig returns sensible defaults.
func DefaultHarnessConfig() HarnessConfig {
	return HarnessConfig{
		Concurrency: 1,
		ResultsDir:  "results",
	}
}

func (c HarnessConfig) validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("harness concurrency must be >= 1, got %d", c.Concurrency)
	}
	return nil
}

// TelemetryConfig configures the per-run telemetry sinks.
type TelemetryConfig struct {
	// LogPath is the append-only JSONL log.
	LogPath string `yaml:"log_path"`

	// DBPath is the SQLite analysis database the analyze command
	// ingests into.
	DBPath string `yaml:"db_path"`
}

// DefaultTelemetryConfig returns sensible defaults.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		LogPath: "results/telemetry.jsonl",
		DBPath:  "results/telemetry.db",
	}
}
