package coordinator

// DefaultBreakerThreshold is the number of consecutive zero-progress
// rounds after which the breaker trips. Guided backfill can legitimately
// come up empty when the model has exhausted a topic's vocabulary; two
// consecutive empty rounds is treated as enough evidence to switch
// strategy, not as proof the target is unreachable.
const DefaultBreakerThreshold = 2

// Breaker tracks consecutive no-progress generation rounds and trips once
// the threshold is reached. Once tripped it stays tripped for the
// remainder of the run.
type Breaker struct {
	threshold  int
	noProgress int
	tripped    bool
}

// NewBreaker creates a Breaker. A threshold <= 0 uses the default.
func NewBreaker(threshold int) *Breaker {
	if threshold <= 0 {
		threshold = DefaultBreakerThreshold
	}
	return &Breaker{threshold: threshold}
}

// RecordRound updates the breaker with one round's new-unique count and
// reports whether the breaker is tripped. A productive round resets the
// counter; it never untrips the breaker.
func (b *Breaker) RecordRound(newUnique int) bool {
	if newUnique > 0 {
		b.noProgress = 0
	} else {
		b.noProgress++
		if b.noProgress >= b.threshold {
			b.tripped = true
		}
	}
	return b.tripped
}

// Tripped reports whether the breaker has tripped during this run.
func (b *Breaker) Tripped() bool {
	return b.tripped
}

// NoProgressRounds returns the current consecutive zero-progress count.
func (b *Breaker) NoProgressRounds() int {
	return b.noProgress
}
