// Package analysis turns accumulated suite reports into a human-readable
// reliability summary: per-suite metrics, cross-suite best and worst
// tests, and a markdown report for offline review.
package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"listforge/internal/harness"
)

// SuiteSummary is the digest of one suite report.
type SuiteSummary struct {
	SuiteID        string
	SuiteName      string
	TotalRuns      int
	SuccessfulRuns int
	FailedRuns     int
	SuccessRate    float64
	TotalDuration  float64
	AvgPerRun      float64
	Stats          []harness.TestStats
}

// Analysis is the combined digest across every report in a results
// directory.
type Analysis struct {
	Suites      []SuiteSummary
	TotalRuns   int
	TotalPassed int
	OverallRate float64
	TotalTime   float64
}

// LoadDir finds every *_report.json under dir and digests them. Reports
// that fail to parse are skipped with their error noted.
func LoadDir(dir string) (*Analysis, []error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*_report.json"))
	if err != nil {
		return &Analysis{}, []error{err}
	}
	sort.Strings(paths)

	a := &Analysis{}
	var problems []error
	for _, path := range paths {
		report, err := harness.LoadReport(path)
		if err != nil {
			problems = append(problems, fmt.Errorf("%s: %w", filepath.Base(path), err))
			continue
		}
		a.Suites = append(a.Suites, summarize(report))
	}

	for _, s := range a.Suites {
		a.TotalRuns += s.TotalRuns
		a.TotalPassed += s.SuccessfulRuns
		a.TotalTime += s.TotalDuration
	}
	if a.TotalRuns > 0 {
		a.OverallRate = float64(a.TotalPassed) / float64(a.TotalRuns)
	}
	return a, problems
}

func summarize(r *harness.SuiteReport) SuiteSummary {
	s := SuiteSummary{
		SuiteID:        r.SuiteID,
		SuiteName:      r.SuiteName,
		TotalRuns:      r.TotalRuns,
		SuccessfulRuns: r.SuccessfulRuns,
		FailedRuns:     r.FailedRuns,
		TotalDuration:  r.TotalDuration,
		Stats:          r.Stats,
	}
	if s.TotalRuns > 0 {
		s.SuccessRate = float64(s.SuccessfulRuns) / float64(s.TotalRuns)
		s.AvgPerRun = s.TotalDuration / float64(s.TotalRuns)
	}
	return s
}

// BestTests returns up to n tests across all suites ordered by pass rate
// descending, dup rate ascending as the tiebreak.
func (a *Analysis) BestTests(n int) []harness.TestStats {
	return a.rankedTests(n, func(x, y harness.TestStats) bool {
		if x.PassAtNRate != y.PassAtNRate {
			return x.PassAtNRate > y.PassAtNRate
		}
		return x.MeanDupRate < y.MeanDupRate
	})
}

// WorstTests returns up to n tests ordered by pass rate ascending.
func (a *Analysis) WorstTests(n int) []harness.TestStats {
	return a.rankedTests(n, func(x, y harness.TestStats) bool {
		if x.PassAtNRate != y.PassAtNRate {
			return x.PassAtNRate < y.PassAtNRate
		}
		return x.MeanDupRate > y.MeanDupRate
	})
}

func (a *Analysis) rankedTests(n int, less func(x, y harness.TestStats) bool) []harness.TestStats {
	var all []harness.TestStats
	for _, s := range a.Suites {
		all = append(all, s.Stats...)
	}
	sort.SliceStable(all, func(i, j int) bool { return less(all[i], all[j]) })
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// Markdown renders the full analysis report.
func (a *Analysis) Markdown() string {
	var b strings.Builder

	b.WriteString("# Acceptance Test Analysis\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Total runs: %d\n", a.TotalRuns)
	fmt.Fprintf(&b, "- Overall success rate: %.1f%%\n", a.OverallRate*100)
	fmt.Fprintf(&b, "- Total duration: %.1fs\n\n", a.TotalTime)

	b.WriteString("## Suite Comparison\n\n")
	b.WriteString("| Suite | Runs | Success Rate | Duration | Avg/Run |\n")
	b.WriteString("|-------|------|--------------|----------|--------|\n")
	for _, s := range a.Suites {
		fmt.Fprintf(&b, "| %s | %d | %.1f%% | %.1fs | %.2fs |\n",
			s.SuiteName, s.TotalRuns, s.SuccessRate*100, s.TotalDuration, s.AvgPerRun)
	}
	b.WriteString("\n")

	for _, s := range a.Suites {
		fmt.Fprintf(&b, "## %s\n\n", s.SuiteName)
		fmt.Fprintf(&b, "Suite ID: `%s`\n\n", s.SuiteID)
		b.WriteString("| Test | Pass@N | Dup Rate | Median IPS | Breaker Trips |\n")
		b.WriteString("|------|--------|----------|------------|---------------|\n")
		for _, t := range s.Stats {
			fmt.Fprintf(&b, "| %s | %.1f%% | %.1f±%.1f%% | %.2f | %.0f%% |\n",
				t.TestID, t.PassAtNRate*100, t.MeanDupRate*100, t.StdevDupRate*100,
				t.MedianItemsPerSecond, t.BreakerTripRate*100)
		}
		b.WriteString("\n")
	}

	if best := a.BestTests(5); len(best) > 0 {
		b.WriteString("## Most Reliable Tests\n\n")
		for i, t := range best {
			fmt.Fprintf(&b, "%d. %s: pass rate %.1f%%, dup rate %.1f%%\n",
				i+1, t.TestID, t.PassAtNRate*100, t.MeanDupRate*100)
		}
		b.WriteString("\n")
	}
	if worst := a.WorstTests(3); len(worst) > 0 {
		b.WriteString("## Needs Attention\n\n")
		for i, t := range worst {
			fmt.Fprintf(&b, "%d. %s: pass rate %.1f%%, dup rate %.1f%%\n",
				i+1, t.TestID, t.PassAtNRate*100, t.MeanDupRate*100)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// WriteMarkdown saves the rendered analysis under dir and returns the
// file path.
func (a *Analysis) WriteMarkdown(dir string) (string, error) {
	path := filepath.Join(dir, "DETAILED_ANALYSIS.md")
	if err := os.WriteFile(path, []byte(a.Markdown()), 0644); err != nil {
		return "", fmt.Errorf("failed to write analysis: %w", err)
	}
	return path, nil
}
