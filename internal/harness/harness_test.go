package harness

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"listforge/internal/coordinator"
	"listforge/internal/generator"
	"listforge/internal/telemetry"
)

// generatorFunc adapts a function to the Generator interface.
type generatorFunc func(ctx context.Context, req generator.Request) ([]string, error)

func (f generatorFunc) Generate(ctx context.Context, req generator.Request) ([]string, error) {
	return f(ctx, req)
}

// seededStub produces req.Count distinct items for every seed except the
// ones listed in stuck, which only ever produce a single repeated item.
func seededStub(stuck ...int64) generator.Generator {
	stuckSet := make(map[int64]bool, len(stuck))
	for _, s := range stuck {
		stuckSet[s] = true
	}
	return generatorFunc(func(ctx context.Context, req generator.Request) ([]string, error) {
		var seed int64
		if req.Hint.Seed != nil {
			seed = *req.Hint.Seed
		}
		if stuckSet[seed] {
			return []string{"the only item"}, nil
		}
		out := make([]string, req.Count)
		for i := range out {
			out[i] = fmt.Sprintf("item s%d v%d n%d", seed, req.Hint.Variant, i)
		}
		return out, nil
	})
}

func testRunner(gen generator.Generator, opts ...RunnerOption) *Runner {
	tun := coordinator.DefaultTunables()
	tun.CallTimeout = 0
	return NewRunner(gen, tun, zap.NewNop(), opts...)
}

func TestRunAcrossSeeds_AllSeedsPass(t *testing.T) {
	r := testRunner(seededStub())

	res, err := r.RunAcrossSeeds(context.Background(), "sitcoms-10", "sitcoms", 10)
	require.NoError(t, err)

	assert.Equal(t, 1.0, res.PassAtN)
	require.Len(t, res.SeedRuns, len(DefaultSeedRing))
	for i, run := range res.SeedRuns {
		assert.Equal(t, DefaultSeedRing[i], run.Seed, "results must land in seed-ring order")
		assert.True(t, run.OK)
		assert.Equal(t, 10, run.ItemsReturned)
		assert.Greater(t, run.ItemsPerSecond, 0.0)
	}
}

func TestRunAcrossSeeds_PassAtNCountsFailures(t *testing.T) {
	r := testRunner(seededStub(1337))

	res, err := r.RunAcrossSeeds(context.Background(), "sitcoms-10", "sitcoms", 10)
	require.NoError(t, err)

	assert.Equal(t, 0.8, res.PassAtN)
	for _, run := range res.SeedRuns {
		if run.Seed == 1337 {
			assert.False(t, run.OK)
			assert.Equal(t, 1, run.ItemsReturned)
			assert.NotEmpty(t, run.Diagnostics.FailureReason)
		} else {
			assert.True(t, run.OK)
		}
	}
}

func TestRunAcrossSeeds_InputValidation(t *testing.T) {
	r := testRunner(seededStub())

	_, err := r.RunAcrossSeeds(context.Background(), "t", "sitcoms", 0)
	require.Error(t, err)
	_, err = r.RunAcrossSeeds(context.Background(), "t", "", 10)
	require.Error(t, err)
}

func TestRunAcrossSeeds_ConcurrentRunsLeakNothing(t *testing.T) {
	// opencensus starts a global worker goroutine at package init via a
	// transitive dependency; it is not something RunAcrossSeeds leaks.
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))

	r := testRunner(seededStub(42), WithConcurrency(4))
	res, err := r.RunAcrossSeeds(context.Background(), "sitcoms-25", "sitcoms", 25)
	require.NoError(t, err)

	assert.Equal(t, 0.8, res.PassAtN)
	for i, run := range res.SeedRuns {
		assert.Equal(t, DefaultSeedRing[i], run.Seed, "concurrent runs must preserve seed-ring order")
	}
}

func TestRunAcrossSeeds_CustomSeedRing(t *testing.T) {
	ring := []int64{7, 8, 9}
	r := testRunner(seededStub(), WithSeedRing(ring))

	res, err := r.RunAcrossSeeds(context.Background(), "t", "sitcoms", 5)
	require.NoError(t, err)
	require.Len(t, res.SeedRuns, 3)
	for i, run := range res.SeedRuns {
		assert.Equal(t, ring[i], run.Seed)
	}
}

func TestRunAcrossSeeds_TelemetryRecordPerSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.jsonl")
	exp, err := telemetry.NewExporter(path)
	require.NoError(t, err)

	r := testRunner(seededStub(1337), WithExporter(exp))
	_, err = r.RunAcrossSeeds(context.Background(), "sitcoms-10", "sitcoms", 10)
	require.NoError(t, err)
	require.NoError(t, exp.Close())

	records, err := telemetry.ReadLog(path)
	require.NoError(t, err)
	require.Len(t, records, len(DefaultSeedRing), "every seed run is exported, failures included")

	seeds := make([]int64, len(records))
	for i, rec := range records {
		seeds[i] = rec.Seed
		assert.Equal(t, "sitcoms-10", rec.TestID)
		assert.Equal(t, "sitcoms", rec.Query)
		assert.Equal(t, 10, rec.TargetN)
		assert.NotEmpty(t, rec.RunID)
	}
	assert.ElementsMatch(t, DefaultSeedRing, seeds)
}

func TestAcceptanceResult_Summary(t *testing.T) {
	res := AcceptanceResult{
		TestID:               "sitcoms-10",
		PassAtN:              0.8,
		MedianItemsPerSecond: 12.5,
		SeedRuns: []SeedRun{
			{OK: true}, {OK: true}, {OK: false}, {OK: true}, {OK: true},
		},
	}
	assert.Equal(t, "sitcoms-10 passAtN=0.80 ok=[true true false true true] medianIPS=12.50", res.Summary())
}

func TestMedian(t *testing.T) {
	t.Run("odd count", func(t *testing.T) {
		assert.Equal(t, 3.0, median([]float64{5, 1, 3}))
	})
	t.Run("even count averages middle two", func(t *testing.T) {
		assert.Equal(t, 2.5, median([]float64{4, 1, 2, 3}))
	})
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, 0.0, median(nil))
	})
	t.Run("outlier insensitive", func(t *testing.T) {
		// One slow seed must not drag the aggregate the way a mean would.
		assert.Equal(t, 10.0, median([]float64{10, 10, 10, 10, 0.001}))
	})
	t.Run("input not mutated", func(t *testing.T) {
		in := []float64{3, 1, 2}
		median(in)
		assert.Equal(t, []float64{3, 1, 2}, in)
	})
}
