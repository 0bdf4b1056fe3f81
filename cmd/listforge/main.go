package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"listforge/internal/config"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	callTimeout time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "listforge",
	Short: "listforge - unique-list generation coordinator",
	Long: `listforge drives a generative model toward N distinct named items
for a topic. The coordinator tolerates high duplicate rates through
bounded guided/unguided backfill with a circuit breaker, and always
terminates with items plus diagnostics.

The acceptance harness runs the coordinator across a fixed seed ring
and reports pass@N and throughput per test.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().DurationVar(&callTimeout, "timeout", 0, "per-generator-call timeout (overrides config)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(acceptanceCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// applyFlagOverrides layers global flag values over the loaded config.
func applyFlagOverrides(cfg *config.Config) {
	if callTimeout > 0 {
		cfg.Coordinator.CallTimeout = callTimeout.String()
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
