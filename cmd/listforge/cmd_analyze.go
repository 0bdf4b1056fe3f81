package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"listforge/internal/analysis"
	"listforge/internal/config"
	"listforge/internal/telemetry"
)

var (
	analyzeDir   string
	analyzeJSONL string
	analyzeDB    string
)

// analyzeCmd ingests telemetry and renders the markdown analysis.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze suite reports and telemetry",
	Long: `Loads every *_report.json from the results directory, renders a
markdown reliability analysis, and ingests the JSONL telemetry log into
the SQLite analysis database for ad-hoc querying.

Example:
  listforge analyze --dir results`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDir, "dir", "", "results directory (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeJSONL, "jsonl", "", "telemetry JSONL path (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeDB, "db", "", "analysis database path (default from config)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if analyzeDir == "" {
		analyzeDir = cfg.Harness.ResultsDir
	}
	if analyzeJSONL == "" {
		analyzeJSONL = cfg.Telemetry.LogPath
	}
	if analyzeDB == "" {
		analyzeDB = cfg.Telemetry.DBPath
	}

	a, problems := analysis.LoadDir(analyzeDir)
	for _, p := range problems {
		logger.Warn("skipped report", zap.Error(p))
	}
	if len(a.Suites) == 0 {
		return fmt.Errorf("no suite reports found in %s", analyzeDir)
	}

	path, err := a.WriteMarkdown(analyzeDir)
	if err != nil {
		return err
	}
	fmt.Printf("Analysis written to %s\n", path)
	fmt.Printf("Total runs: %d, overall success rate: %.1f%%\n", a.TotalRuns, a.OverallRate*100)

	// Telemetry ingest is best-effort: the markdown analysis stands on
	// its own when no JSONL log exists yet.
	records, err := telemetry.ReadLog(analyzeJSONL)
	if err != nil {
		logger.Warn("telemetry log not ingested", zap.Error(err))
		return nil
	}
	store, err := telemetry.NewStore(analyzeDB)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Ingest(records)
	if err != nil {
		return err
	}
	logger.Info("telemetry ingested", zap.Int("records", n), zap.String("db", store.Path()))

	aggs, err := store.Aggregates()
	if err != nil {
		return err
	}
	for _, agg := range aggs {
		fmt.Printf("%-24s runs=%d passRate=%.2f meanDupRate=%.2f meanElapsed=%.2fs breakerTripRate=%.2f\n",
			agg.TestID, agg.Runs, agg.PassRate, agg.MeanDupRate, agg.MeanElapsed, agg.BreakerTripRate)
	}
	return nil
}
