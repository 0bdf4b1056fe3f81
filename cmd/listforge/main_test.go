package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listforge/internal/config"
)

func TestGlobalFlagsRegistered(t *testing.T) {
	for _, name := range []string{"verbose", "config", "timeout"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing persistent flag %q", name)
	}
}

func TestTimeoutFlagOverridesConfig(t *testing.T) {
	cfg := config.Default()
	require.Equal(t, "1m30s", cfg.Coordinator.CallTimeout)

	callTimeout = 30 * time.Second
	defer func() { callTimeout = 0 }()

	applyFlagOverrides(cfg)
	assert.Equal(t, "30s", cfg.Coordinator.CallTimeout)
	assert.Equal(t, 30*time.Second, cfg.Coordinator.Tunables().CallTimeout)
}

func TestTimeoutFlagUnsetKeepsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Coordinator.CallTimeout = "45s"

	callTimeout = 0
	applyFlagOverrides(cfg)
	assert.Equal(t, "45s", cfg.Coordinator.CallTimeout)
}
