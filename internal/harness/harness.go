// Package harness runs the generation coordinator across a fixed seed
// ring and turns a non-deterministic external generator into a
// reproducible, quantified reliability signal: pass@N and throughput.
package harness

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"listforge/internal/coordinator"
	"listforge/internal/generator"
	"listforge/internal/telemetry"
)

// SeedRingVersion identifies the current seed ring. Bump it whenever the
// ring changes so results across harness versions stay comparable.
const SeedRingVersion = 1

// DefaultSeedRing is the fixed set of seeds acceptance runs use. The
// values are arbitrary but frozen; reproducibility matters here, not
// randomness.
var DefaultSeedRing = []int64{11, 42, 1337, 2024, 9001}

// epsilon floors elapsed time in throughput math so a zero-duration run
// cannot divide by zero.
const epsilon = 1e-6

// SeedRun is one seed's outcome. Immutable once recorded.
type SeedRun struct {
	Seed           int64                      `json:"seed"`
	OK             bool                       `json:"ok"`
	ItemsReturned  int                        `json:"itemsReturned"`
	ElapsedSeconds float64                    `json:"elapsedSeconds"`
	ItemsPerSecond float64                    `json:"itemsPerSecond"`
	Diagnostics    coordinator.RunDiagnostics `json:"diagnostics"`
}

// AcceptanceResult aggregates one test's runs across the seed ring.
type AcceptanceResult struct {
	TestID               string    `json:"testId"`
	Query                string    `json:"query"`
	TargetN              int       `json:"targetN"`
	PassAtN              float64   `json:"passAtN"`
	MedianItemsPerSecond float64   `json:"medianItemsPerSecond"`
	SeedRuns             []SeedRun `json:"seedRuns"`
}

// Summary renders the one-line per-test console summary.
func (r AcceptanceResult) Summary() string {
	oks := make([]string, len(r.SeedRuns))
	for i, run := range r.SeedRuns {
		oks[i] = fmt.Sprintf("%v", run.OK)
	}
	return fmt.Sprintf("%s passAtN=%.2f ok=[%s] medianIPS=%.2f",
		r.TestID, r.PassAtN, strings.Join(oks, " "), r.MedianItemsPerSecond)
}

// Runner executes acceptance tests. The generator and normalizer are
// shared (both safe for concurrent use); every seed gets a fresh
// Orchestrator so runs share no mutable state.
type Runner struct {
	gen         generator.Generator
	norm        *coordinator.Normalizer
	tunables    coordinator.Tunables
	seedRing    []int64
	concurrency int
	logger      *zap.Logger
	exporter    *telemetry.Exporter
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSeedRing overrides the default seed ring.
func WithSeedRing(ring []int64) RunnerOption {
	return func(r *Runner) {
		if len(ring) > 0 {
			r.seedRing = ring
		}
	}
}

// WithConcurrency bounds how many seeds run at once. Values below 1 mean
// strictly sequential.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithExporter attaches a telemetry exporter; every seed run is appended
// regardless of outcome.
func WithExporter(exp *telemetry.Exporter) RunnerOption {
	return func(r *Runner) { r.exporter = exp }
}

// NewRunner creates a Runner.
func NewRunner(gen generator.Generator, tunables coordinator.Tunables, logger *zap.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		gen:         gen,
		norm:        coordinator.NewNormalizer(""),
		tunables:    tunables,
		seedRing:    DefaultSeedRing,
		concurrency: 1,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunAcrossSeeds runs one test across the seed ring and aggregates
// pass@N and median throughput. Results land in seed-ring order. The
// returned error covers caller-input problems only; individual seed
// failures are data, not errors.
func (r *Runner) RunAcrossSeeds(ctx context.Context, testID, query string, targetN int) (AcceptanceResult, error) {
	if targetN <= 0 {
		return AcceptanceResult{}, fmt.Errorf("target count must be positive, got %d", targetN)
	}
	if query == "" {
		return AcceptanceResult{}, fmt.Errorf("query must not be empty")
	}

	runs := make([]SeedRun, len(r.seedRing))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, seed := range r.seedRing {
		g.Go(func() error {
			run, err := r.runSeed(gctx, testID, query, targetN, seed)
			if err != nil {
				return err
			}
			runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return AcceptanceResult{}, err
	}

	passes := 0
	ips := make([]float64, 0, len(runs))
	for _, run := range runs {
		if run.OK {
			passes++
		}
		ips = append(ips, run.ItemsPerSecond)
	}

	result := AcceptanceResult{
		TestID:               testID,
		Query:                query,
		TargetN:              targetN,
		PassAtN:              float64(passes) / float64(len(runs)),
		MedianItemsPerSecond: median(ips),
		SeedRuns:             runs,
	}
	r.logger.Info("acceptance test complete",
		zap.String("testId", testID),
		zap.Float64("passAtN", result.PassAtN),
		zap.Float64("medianIPS", result.MedianItemsPerSecond),
	)
	return result, nil
}

// runSeed executes one fully independent coordinator run.
func (r *Runner) runSeed(ctx context.Context, testID, query string, targetN int, seed int64) (SeedRun, error) {
	orch := coordinator.New(r.gen, r.norm, r.tunables)

	start := time.Now()
	res, err := orch.Run(ctx, coordinator.Request{
		Topic:       query,
		TargetCount: targetN,
		Seed:        &seed,
	})
	elapsed := time.Since(start)
	if err != nil {
		return SeedRun{}, fmt.Errorf("seed %d: %w", seed, err)
	}

	items := len(res.Items)
	run := SeedRun{
		Seed:           seed,
		OK:             items >= targetN,
		ItemsReturned:  items,
		ElapsedSeconds: elapsed.Seconds(),
		ItemsPerSecond: float64(items) / max(elapsed.Seconds(), epsilon),
		Diagnostics:    res.Diagnostics,
	}

	// Diagnostic visibility at the point of failure is the harness's
	// primary debugging value: log before moving to the next seed.
	if !run.OK {
		r.logger.Warn("seed run failed",
			zap.String("testId", testID),
			zap.Int64("seed", seed),
			zap.String("reason", res.Diagnostics.FailureReason),
			zap.Float64("dupRate", res.Diagnostics.DupRate),
			zap.Int("backfillRounds", res.Diagnostics.BackfillRounds),
			zap.Bool("circuitBreaker", res.Diagnostics.CircuitBreakerTriggered),
		)
	}

	if r.exporter != nil {
		rec := telemetry.NewRecord(testID, query, targetN, seed, items, elapsed, res.Diagnostics)
		if err := r.exporter.Append(rec); err != nil {
			r.logger.Warn("telemetry append failed", zap.Int64("seed", seed), zap.Error(err))
		}
	}
	return run, nil
}

// median returns the middle value (mean of the middle two for even
// counts). Median, not mean: one slow seed must not drag the number.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
