package config

import (
	"fmt"
	"time"

	"listforge/internal/coordinator"
)

// CoordinatorConfig exposes the orchestrator's phase ceilings and
// sampling knobs. The per-phase bounds are what guarantee termination;
// they are tunable but never removable.
type CoordinatorConfig struct {
	OverRequestFactor   float64 `yaml:"over_request_factor"`
	GuidedRoundLimit    int     `yaml:"guided_round_limit"`
	BreakerThreshold    int     `yaml:"breaker_threshold"`
	UnguidedRounds      int     `yaml:"unguided_rounds"`
	AdaptiveAttempts    int     `yaml:"adaptive_attempts"`
	GreedyAttemptFactor int     `yaml:"greedy_attempt_factor"`
	TopDuplicates       int     `yaml:"top_duplicates"`
	CallTimeout         string  `yaml:"call_timeout"` // Go duration string

	// StripPunctuation is the punctuation set the dedup normalizer
	// removes. Empty means the built-in default.
	StripPunctuation string `yaml:"strip_punctuation"`
}

// DefaultCoordinatorConfig mirrors coordinator.DefaultTunables.
func DefaultCoordinatorConfig() CoordinatorConfig {
	t := coordinator.DefaultTunables()
	return CoordinatorConfig{
		OverRequestFactor:   t.OverRequestFactor,
		GuidedRoundLimit:    t.GuidedRoundLimit,
		BreakerThreshold:    t.BreakerThreshold,
		UnguidedRounds:      t.UnguidedRounds,
		AdaptiveAttempts:    t.AdaptiveAttempts,
		GreedyAttemptFactor: t.GreedyAttemptFactor,
		TopDuplicates:       t.TopDuplicates,
		CallTimeout:         t.CallTimeout.String(),
	}
}

// Tunables converts to the coordinator's runtime form.
func (c CoordinatorConfig) Tunables() coordinator.Tunables {
	timeout, err := time.ParseDuration(c.CallTimeout)
	if err != nil {
		timeout = coordinator.DefaultTunables().CallTimeout
	}
	return coordinator.Tunables{
		OverRequestFactor:   c.OverRequestFactor,
		GuidedRoundLimit:    c.GuidedRoundLimit,
		BreakerThreshold:    c.BreakerThreshold,
		UnguidedRounds:      c.UnguidedRounds,
		AdaptiveAttempts:    c.AdaptiveAttempts,
		GreedyAttemptFactor: c.GreedyAttemptFactor,
		TopDuplicates:       c.TopDuplicates,
		CallTimeout:         timeout,
	}
}

func (c CoordinatorConfig) validate() error {
	if c.OverRequestFactor < 1 {
		return fmt.Errorf("over_request_factor must be >= 1, got %v", c.OverRequestFactor)
	}
	if c.GuidedRoundLimit < 0 || c.UnguidedRounds < 0 || c.AdaptiveAttempts < 0 || c.GreedyAttemptFactor < 0 {
		return fmt.Errorf("phase ceilings must be non-negative")
	}
	if c.BreakerThreshold < 1 {
		return fmt.Errorf("breaker_threshold must be >= 1, got %d", c.BreakerThreshold)
	}
	return nil
}
