package harness

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// TestStats are the per-test aggregates offline analysis consumes.
type TestStats struct {
	TestID               string  `json:"testId"`
	TotalRuns            int     `json:"totalRuns"`
	PassAtNRate          float64 `json:"passAtNRate"`
	MeanDupRate          float64 `json:"meanDupRate"`
	StdevDupRate         float64 `json:"stdevDupRate"`
	MeanItemsPerSecond   float64 `json:"meanItemsPerSecond"`
	MedianItemsPerSecond float64 `json:"medianItemsPerSecond"`
	BreakerTripRate      float64 `json:"breakerTripRate"`
}

// SuiteReport is the JSON artifact written after a suite run, shaped for
// the analysis tooling: suite totals plus per-test aggregates and the
// full per-seed results.
type SuiteReport struct {
	SuiteID         string             `json:"suiteId"`
	SuiteName       string             `json:"suiteName"`
	SeedRingVersion int                `json:"seedRingVersion"`
	GeneratedAt     time.Time          `json:"generatedAt"`
	TotalRuns       int                `json:"totalRuns"`
	SuccessfulRuns  int                `json:"successfulRuns"`
	FailedRuns      int                `json:"failedRuns"`
	TotalDuration   float64            `json:"totalDuration"`
	Stats           []TestStats        `json:"stats"`
	Results         []AcceptanceResult `json:"results"`
}

func buildReport(suite *Suite, results []AcceptanceResult, elapsed time.Duration) *SuiteReport {
	report := &SuiteReport{
		SuiteID:         suite.SuiteID,
		SuiteName:       suite.Name,
		SeedRingVersion: SeedRingVersion,
		GeneratedAt:     time.Now().UTC(),
		TotalDuration:   elapsed.Seconds(),
		Results:         results,
	}
	if report.SuiteName == "" {
		report.SuiteName = suite.SuiteID
	}

	for _, res := range results {
		stats := TestStats{
			TestID:               res.TestID,
			TotalRuns:            len(res.SeedRuns),
			PassAtNRate:          res.PassAtN,
			MedianItemsPerSecond: res.MedianItemsPerSecond,
		}

		var dupRates, ips []float64
		trips := 0
		for _, run := range res.SeedRuns {
			report.TotalRuns++
			if run.OK {
				report.SuccessfulRuns++
			} else {
				report.FailedRuns++
			}
			dupRates = append(dupRates, run.Diagnostics.DupRate)
			ips = append(ips, run.ItemsPerSecond)
			if run.Diagnostics.CircuitBreakerTriggered {
				trips++
			}
		}
		stats.MeanDupRate = mean(dupRates)
		stats.StdevDupRate = stdev(dupRates)
		stats.MeanItemsPerSecond = mean(ips)
		if len(res.SeedRuns) > 0 {
			stats.BreakerTripRate = float64(trips) / float64(len(res.SeedRuns))
		}
		report.Stats = append(report.Stats, stats)
	}
	return report
}

// Write saves the report as <suiteId>_report.json under dir.
func (r *SuiteReport) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, r.SuiteID+"_report.json")
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// LoadReport reads a suite report JSON file from disk.
func LoadReport(path string) (*SuiteReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r SuiteReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report JSON: %w", err)
	}
	return &r, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sumSq := 0.0
	for _, v := range values {
		sumSq += (v - m) * (v - m)
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}
