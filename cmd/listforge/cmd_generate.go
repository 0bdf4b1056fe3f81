package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"listforge/internal/config"
	"listforge/internal/coordinator"
	"listforge/internal/generator"
)

var (
	generateTopic string
	generateCount int
	generateSeed  int64
)

// generateCmd performs a single coordinator run and prints the items.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate N unique items for a topic",
	Long: `Runs the generation coordinator once: initial over-request, guided
backfill with circuit breaker, unguided backfill, adaptive retry, and
greedy last-mile filling. Prints the items and a diagnostics summary.

Example:
  listforge generate --topic "1990s sitcoms" --count 50 --seed 42`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateTopic, "topic", "", "topic to generate items for")
	generateCmd.Flags().IntVar(&generateCount, "count", 25, "number of unique items to generate")
	generateCmd.Flags().Int64Var(&generateSeed, "seed", 0, "sampling seed for reproducible generation")
	_ = generateCmd.MarkFlagRequired("topic")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)

	gen, err := generator.New(cmd.Context(), cfg.Generator.FactoryConfig())
	if err != nil {
		return err
	}

	req := coordinator.Request{
		Topic:       generateTopic,
		TargetCount: generateCount,
	}
	if cmd.Flags().Changed("seed") {
		req.Seed = &generateSeed
	}

	norm := coordinator.NewNormalizer(cfg.Coordinator.StripPunctuation)
	orch := coordinator.New(gen, norm, cfg.Coordinator.Tunables())
	res, err := orch.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	for i, item := range res.Items {
		fmt.Printf("%3d. %s\n", i+1, item)
	}
	d := res.Diagnostics
	logger.Info("run complete",
		zap.Int("items", len(res.Items)),
		zap.Bool("complete", res.Complete),
		zap.Int("passes", d.PassCount),
		zap.Int("backfillRounds", d.BackfillRounds),
		zap.Float64("dupRate", d.DupRate),
		zap.Bool("circuitBreaker", d.CircuitBreakerTriggered),
	)
	if !res.Complete {
		fmt.Printf("\nIncomplete: %d/%d items (%s)\n", len(res.Items), generateCount, d.FailureReason)
	}
	return nil
}
