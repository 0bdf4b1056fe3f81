package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"listforge/internal/config"
	"listforge/internal/generator"
	"listforge/internal/harness"
	"listforge/internal/telemetry"
)

var (
	acceptanceSuite       string
	acceptanceConcurrency int
	acceptanceTelemetry   string
	acceptanceResultsDir  string
)

// acceptanceCmd runs a YAML suite across the seed ring.
var acceptanceCmd = &cobra.Command{
	Use:   "acceptance",
	Short: "Run acceptance suites across the seed ring",
	Long: `Runs every case in a YAML suite across the fixed seed ring. Each
seed gets a fresh, fully independent coordinator run. Per-seed failures
are logged with their diagnostics; per-test summaries report pass@N and
median items-per-second. All runs are appended to the telemetry log and
a JSON suite report is written for offline analysis.

Example:
  listforge acceptance --suite suites/smoke.yaml --concurrency 2`,
	RunE: runAcceptance,
}

func init() {
	acceptanceCmd.Flags().StringVar(&acceptanceSuite, "suite", "", "path to YAML suite file")
	acceptanceCmd.Flags().IntVar(&acceptanceConcurrency, "concurrency", 0, "concurrent seed runs (default from config)")
	acceptanceCmd.Flags().StringVar(&acceptanceTelemetry, "telemetry", "", "telemetry JSONL path (default from config)")
	acceptanceCmd.Flags().StringVar(&acceptanceResultsDir, "results", "", "report output directory (default from config)")
	_ = acceptanceCmd.MarkFlagRequired("suite")
}

func runAcceptance(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)
	if acceptanceConcurrency > 0 {
		cfg.Harness.Concurrency = acceptanceConcurrency
	}
	if acceptanceTelemetry != "" {
		cfg.Telemetry.LogPath = acceptanceTelemetry
	}
	if acceptanceResultsDir != "" {
		cfg.Harness.ResultsDir = acceptanceResultsDir
	}

	suite, err := harness.LoadSuite(acceptanceSuite)
	if err != nil {
		return err
	}

	gen, err := generator.New(cmd.Context(), cfg.Generator.FactoryConfig())
	if err != nil {
		return err
	}

	exporter, err := telemetry.NewExporter(cfg.Telemetry.LogPath)
	if err != nil {
		return err
	}
	defer exporter.Close()

	opts := []harness.RunnerOption{
		harness.WithConcurrency(cfg.Harness.Concurrency),
		harness.WithExporter(exporter),
	}
	if len(cfg.Harness.SeedRing) > 0 {
		opts = append(opts, harness.WithSeedRing(cfg.Harness.SeedRing))
	}
	runner := harness.NewRunner(gen, cfg.Coordinator.Tunables(), logger, opts...)

	report, err := runner.RunSuite(cmd.Context(), suite)
	if err != nil {
		return err
	}

	for _, res := range report.Results {
		fmt.Println(res.Summary())
	}

	path, err := report.Write(cfg.Harness.ResultsDir)
	if err != nil {
		return err
	}
	logger.Info("suite complete",
		zap.String("suiteId", report.SuiteID),
		zap.Int("totalRuns", report.TotalRuns),
		zap.Int("successfulRuns", report.SuccessfulRuns),
		zap.String("report", path),
	)
	return nil
}
