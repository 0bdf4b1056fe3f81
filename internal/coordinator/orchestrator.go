package coordinator

import (
	"context"
	"fmt"
	"math"
	"time"

	"listforge/internal/generator"
)

// Tunables bounds every phase of the orchestrator. The per-phase ceilings
// are the structural termination guarantee: the total number of generator
// invocations per run is fixed, so the run always ends even against a
// persistently unhelpful or erroring generator.
type Tunables struct {
	// OverRequestFactor inflates the initial call to absorb expected
	// duplicates (1.5 asks for 75 when the target is 50).
	OverRequestFactor float64
	// GuidedRoundLimit caps guided backfill rounds. The limit and the
	// breaker are independent termination guards.
	GuidedRoundLimit int
	// BreakerThreshold is the consecutive no-progress round count that
	// trips the circuit breaker.
	BreakerThreshold int
	// UnguidedRounds caps unguided backfill calls.
	UnguidedRounds int
	// AdaptiveAttempts caps adaptive-retry calls with varied sampling.
	AdaptiveAttempts int
	// GreedyAttemptFactor bounds greedy last-mile attempts at
	// factor × remaining slots.
	GreedyAttemptFactor int
	// TopDuplicates is how many sticky duplicate keys diagnostics keep.
	TopDuplicates int
	// CallTimeout bounds each generator call. A timeout is treated the
	// same as a generator error: recorded, zero-progress, never fatal.
	CallTimeout time.Duration
}

// DefaultTunables returns the production defaults.
func DefaultTunables() Tunables {
	return Tunables{
		OverRequestFactor:   1.5,
		GuidedRoundLimit:    4,
		BreakerThreshold:    DefaultBreakerThreshold,
		UnguidedRounds:      2,
		AdaptiveAttempts:    3,
		GreedyAttemptFactor: 3,
		TopDuplicates:       DefaultTopDuplicates,
		CallTimeout:         90 * time.Second,
	}
}

// Request asks one run for TargetCount unique items on Topic. Seed, when
// set, is forwarded to the generator's sampling hints so identical inputs
// reproduce identical behavior against a deterministic generator.
type Request struct {
	Topic       string
	TargetCount int
	Seed        *int64
}

// Result is what every run returns. A partial completion is not an error:
// Items holds whatever was accumulated and Diagnostics explains the
// shortfall.
type Result struct {
	Items       []string
	Complete    bool
	Diagnostics RunDiagnostics
}

// Orchestrator sequences initial generation, guided backfill, unguided
// backfill, adaptive retry, and greedy last-mile filling for one run. An
// Orchestrator serves exactly one Run call; create, run, discard.
type Orchestrator struct {
	gen  generator.Generator
	norm *Normalizer
	tun  Tunables
}

// New creates an Orchestrator over gen with the given tunables.
func New(gen generator.Generator, norm *Normalizer, tun Tunables) *Orchestrator {
	if norm == nil {
		norm = NewNormalizer("")
	}
	return &Orchestrator{gen: gen, norm: norm, tun: tun}
}

// Run executes the full phase sequence. The returned error is non-nil
// only for invalid caller input; generator faults degrade to recorded
// zero-progress rounds and never surface as errors.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	if req.Topic == "" {
		return Result{}, fmt.Errorf("topic must not be empty")
	}
	if req.TargetCount <= 0 {
		return Result{}, fmt.Errorf("target count must be positive, got %d", req.TargetCount)
	}

	rec := NewRecorder(o.tun.TopDuplicates)
	acc := NewAccumulator(o.norm, req.TargetCount)
	brk := NewBreaker(o.tun.BreakerThreshold)

	o.initialGeneration(ctx, req, acc, rec)
	if !acc.Full() {
		o.guidedBackfill(ctx, req, acc, rec, brk)
	}
	if !acc.Full() {
		o.unguidedBackfill(ctx, req, acc, rec)
	}
	if !acc.Full() {
		o.adaptiveRetry(ctx, req, acc, rec)
	}
	if !acc.Full() {
		o.greedyLastMile(ctx, req, acc, rec)
	}

	complete := acc.Full()
	if !complete {
		rec.RecordFailure(fmt.Sprintf("Incomplete: %d/%d items after %d passes",
			acc.Len(), req.TargetCount, rec.Passes()))
	}
	return Result{
		Items:       acc.Items(),
		Complete:    complete,
		Diagnostics: rec.Snapshot(),
	}, nil
}

// initialGeneration over-requests once for the full target.
func (o *Orchestrator) initialGeneration(ctx context.Context, req Request, acc *Accumulator, rec *Recorder) {
	count := int(math.Ceil(float64(req.TargetCount) * o.tun.OverRequestFactor))
	if count < req.TargetCount {
		count = req.TargetCount
	}
	o.round(ctx, "Initial generation", acc, rec, generator.Request{
		Topic: req.Topic,
		Count: count,
		Hint:  generator.SamplingHint{Seed: req.Seed},
	})
}

// guidedBackfill loops bounded rounds, passing accumulated items as avoid
// guidance and feeding the breaker each round's progress.
func (o *Orchestrator) guidedBackfill(ctx context.Context, req Request, acc *Accumulator, rec *Recorder, brk *Breaker) {
	for i := 0; i < o.tun.GuidedRoundLimit && !acc.Full(); i++ {
		if ctx.Err() != nil {
			rec.RecordFailure(fmt.Sprintf("Guided backfill canceled: %v", ctx.Err()))
			return
		}
		rec.RecordBackfillRound()
		newUnique := o.round(ctx, "Guided backfill", acc, rec, generator.Request{
			Topic: req.Topic,
			Count: req.TargetCount - acc.Len(),
			Avoid: acc.Items(),
			Hint:  generator.SamplingHint{Seed: req.Seed, Variant: i + 1},
		})
		if brk.RecordRound(newUnique) {
			rec.RecordBreakerTripped()
			rec.RecordFailure(fmt.Sprintf("Circuit breaker: %d consecutive rounds with no progress at %d/%d",
				brk.NoProgressRounds(), acc.Len(), req.TargetCount))
			return
		}
	}
}

// unguidedBackfill drops the avoid guidance and relies on varied sampling.
func (o *Orchestrator) unguidedBackfill(ctx context.Context, req Request, acc *Accumulator, rec *Recorder) {
	for i := 0; i < o.tun.UnguidedRounds && !acc.Full(); i++ {
		if ctx.Err() != nil {
			rec.RecordFailure(fmt.Sprintf("Unguided backfill canceled: %v", ctx.Err()))
			return
		}
		rec.RecordBackfillRound()
		o.round(ctx, "Unguided backfill", acc, rec, generator.Request{
			Topic: req.Topic,
			Count: req.TargetCount - acc.Len(),
			Hint: generator.SamplingHint{
				Temperature: 0.9,
				Seed:        req.Seed,
				Variant:     100 + i,
			},
		})
	}
}

// adaptiveRetry varies sampling parameters across a small bounded number
// of additional guided attempts.
func (o *Orchestrator) adaptiveRetry(ctx context.Context, req Request, acc *Accumulator, rec *Recorder) {
	for i := 0; i < o.tun.AdaptiveAttempts && !acc.Full(); i++ {
		if ctx.Err() != nil {
			rec.RecordFailure(fmt.Sprintf("Adaptive retry canceled: %v", ctx.Err()))
			return
		}
		rec.RecordBackfillRound()
		o.round(ctx, "Adaptive retry", acc, rec, generator.Request{
			Topic: req.Topic,
			Count: req.TargetCount - acc.Len(),
			Avoid: acc.Items(),
			Hint: generator.SamplingHint{
				Temperature: 0.7 + 0.1*float64(i),
				Seed:        req.Seed,
				Variant:     200 + i,
			},
		})
	}
}

// greedyLastMile requests one item at a time when only a handful of slots
// remain, accepting any non-duplicate immediately. Attempts are bounded
// at factor × remaining, measured at phase entry.
func (o *Orchestrator) greedyLastMile(ctx context.Context, req Request, acc *Accumulator, rec *Recorder) {
	attempts := o.tun.GreedyAttemptFactor * (req.TargetCount - acc.Len())
	for i := 0; i < attempts && !acc.Full(); i++ {
		if ctx.Err() != nil {
			rec.RecordFailure(fmt.Sprintf("Greedy fill canceled: %v", ctx.Err()))
			return
		}
		o.round(ctx, "Greedy fill", acc, rec, generator.Request{
			Topic: req.Topic,
			Count: 1,
			Avoid: acc.Items(),
			Hint: generator.SamplingHint{
				Temperature: 0.9,
				Seed:        req.Seed,
				Variant:     300 + i,
			},
		})
	}
}

// round performs one generator call plus dedup. Errors and timeouts are
// recorded first-writer-wins with a phase-qualified message and the round
// is treated as zero progress; round never propagates a generator fault.
func (o *Orchestrator) round(ctx context.Context, phase string, acc *Accumulator, rec *Recorder, greq generator.Request) int {
	rec.RecordPass()

	callCtx := ctx
	if o.tun.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.tun.CallTimeout)
		defer cancel()
	}

	candidates, err := o.gen.Generate(callCtx, greq)
	if err != nil {
		rec.RecordFailure(fmt.Sprintf("%s error (pass %d): %v", phase, rec.Passes(), err))
		rec.RecordRound(0, 0)
		return 0
	}

	newUnique, duplicates := 0, 0
	for _, c := range candidates {
		if acc.TryAdd(c) {
			newUnique++
			continue
		}
		if acc.Seen(c) {
			duplicates++
			rec.RecordDuplicate(o.norm.Normalize(c))
		}
		// Declined for capacity or empty key: neither unique nor duplicate.
	}
	rec.RecordRound(len(candidates), duplicates)
	return newUnique
}
