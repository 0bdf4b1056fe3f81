package harness

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listforge/internal/coordinator"
)

func TestBuildReport_Stats(t *testing.T) {
	suite := &Suite{SuiteID: "smoke"}
	results := []AcceptanceResult{
		{
			TestID:               "a-10",
			PassAtN:              0.5,
			MedianItemsPerSecond: 8,
			SeedRuns: []SeedRun{
				{Seed: 1, OK: true, ItemsPerSecond: 10,
					Diagnostics: coordinator.RunDiagnostics{DupRate: 0.0}},
				{Seed: 2, OK: false, ItemsPerSecond: 6,
					Diagnostics: coordinator.RunDiagnostics{DupRate: 0.5, CircuitBreakerTriggered: true}},
			},
		},
	}

	report := buildReport(suite, results, 3*time.Second)

	assert.Equal(t, "smoke", report.SuiteID)
	assert.Equal(t, "smoke", report.SuiteName, "name defaults to the suite ID")
	assert.Equal(t, 3.0, report.TotalDuration)
	assert.Equal(t, 2, report.TotalRuns)
	assert.Equal(t, 1, report.SuccessfulRuns)
	assert.Equal(t, 1, report.FailedRuns)

	require.Len(t, report.Stats, 1)
	stats := report.Stats[0]
	assert.Equal(t, "a-10", stats.TestID)
	assert.Equal(t, 2, stats.TotalRuns)
	assert.Equal(t, 0.5, stats.PassAtNRate)
	assert.Equal(t, 0.25, stats.MeanDupRate)
	assert.InDelta(t, 0.35355, stats.StdevDupRate, 1e-4)
	assert.Equal(t, 8.0, stats.MeanItemsPerSecond)
	assert.Equal(t, 0.5, stats.BreakerTripRate)
}

func TestSuiteReport_WriteAndLoadRoundTrip(t *testing.T) {
	suite := &Suite{SuiteID: "smoke", Name: "Smoke"}
	results := []AcceptanceResult{
		{TestID: "a-10", TargetN: 10, PassAtN: 1.0, SeedRuns: []SeedRun{{Seed: 11, OK: true, ItemsReturned: 10}}},
	}
	report := buildReport(suite, results, time.Second)

	dir := t.TempDir()
	path, err := report.Write(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "smoke_report.json"), path)

	loaded, err := LoadReport(path)
	require.NoError(t, err)
	assert.Equal(t, report.SuiteID, loaded.SuiteID)
	assert.Equal(t, report.TotalRuns, loaded.TotalRuns)
	require.Len(t, loaded.Results, 1)
	assert.Equal(t, "a-10", loaded.Results[0].TestID)
	require.Len(t, loaded.Results[0].SeedRuns, 1)
	assert.Equal(t, int64(11), loaded.Results[0].SeedRuns[0].Seed)
}

func TestLoadReport_Malformed(t *testing.T) {
	path := writeSuiteFile(t, "not json at all")
	_, err := LoadReport(path)
	require.Error(t, err)
}

func TestMeanAndStdev(t *testing.T) {
	assert.Equal(t, 0.0, mean(nil))
	assert.Equal(t, 2.0, mean([]float64{1, 2, 3}))
	assert.Equal(t, 0.0, stdev(nil))
	assert.Equal(t, 0.0, stdev([]float64{5}), "sample stdev needs at least two values")
	assert.InDelta(t, 1.0, stdev([]float64{1, 2, 3}), 1e-9)
}
