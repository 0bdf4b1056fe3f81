package harness

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Suite is a YAML-defined collection of acceptance test cases.
type Suite struct {
	Version int    `yaml:"version"`
	SuiteID string `yaml:"suite_id"`
	Name    string `yaml:"name,omitempty"`
	Cases   []Case `yaml:"cases"`
}

// Case is a single acceptance test: one query run across the seed ring.
type Case struct {
	TestID  string `yaml:"test_id"`
	Query   string `yaml:"query"`
	TargetN int    `yaml:"target_n"`
}

// LoadSuite reads a YAML suite file from disk.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse suite YAML: %w", err)
	}
	if s.SuiteID == "" {
		return nil, fmt.Errorf("suite is missing suite_id")
	}
	for i, c := range s.Cases {
		if c.TestID == "" || c.Query == "" || c.TargetN <= 0 {
			return nil, fmt.Errorf("case %d is incomplete: need test_id, query, and positive target_n", i)
		}
	}
	return &s, nil
}

// RunSuite executes all cases in order and assembles the suite report.
// A case whose inputs are invalid aborts the suite; per-seed failures do
// not.
func (r *Runner) RunSuite(ctx context.Context, suite *Suite) (*SuiteReport, error) {
	if suite == nil || len(suite.Cases) == 0 {
		return nil, fmt.Errorf("suite has no cases")
	}

	start := time.Now()
	results := make([]AcceptanceResult, 0, len(suite.Cases))
	for _, c := range suite.Cases {
		res, err := r.RunAcrossSeeds(ctx, c.TestID, c.Query, c.TargetN)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.TestID, err)
		}
		results = append(results, res)
	}

	return buildReport(suite, results, time.Since(start)), nil
}
