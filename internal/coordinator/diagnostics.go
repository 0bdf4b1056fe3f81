package coordinator

import "sort"

// DefaultTopDuplicates is how many of the most-repeated normalized keys a
// snapshot retains for postmortem analysis.
const DefaultTopDuplicates = 5

// RunDiagnostics is the immutable per-run diagnostic snapshot returned at
// run end regardless of which exit path the run took.
type RunDiagnostics struct {
	TotalGenerated          int            `json:"totalGenerated"`
	DupCount                int            `json:"dupCount"`
	DupRate                 float64        `json:"dupRate"`
	BackfillRounds          int            `json:"backfillRounds"`
	CircuitBreakerTriggered bool           `json:"circuitBreakerTriggered"`
	PassCount               int            `json:"passCount"`
	FailureReason           string         `json:"failureReason,omitempty"`
	TopDuplicates           map[string]int `json:"topDuplicates,omitempty"`
}

// Recorder accumulates diagnostics for one run. It is created at run
// start, written throughout, and read once at the end via Snapshot. Not
// safe for concurrent use; each run owns exactly one Recorder.
type Recorder struct {
	totalGenerated int
	dupCount       int
	backfillRounds int
	breakerTripped bool
	passCount      int
	failureReason  string
	dupHits        map[string]int
	topK           int
}

// NewRecorder creates a Recorder retaining the topK most frequent
// duplicate keys. topK <= 0 uses the default.
func NewRecorder(topK int) *Recorder {
	if topK <= 0 {
		topK = DefaultTopDuplicates
	}
	return &Recorder{dupHits: make(map[string]int), topK: topK}
}

// RecordRound folds one generation round into the totals.
func (r *Recorder) RecordRound(candidates, duplicates int) {
	r.totalGenerated += candidates
	r.dupCount += duplicates
}

// RecordDuplicate counts one duplicate occurrence of a normalized key.
func (r *Recorder) RecordDuplicate(key string) {
	r.dupHits[key]++
}

// RecordPass counts one generation call attempt.
func (r *Recorder) RecordPass() {
	r.passCount++
}

// Passes returns the number of generation calls attempted so far.
func (r *Recorder) Passes() int {
	return r.passCount
}

// RecordBackfillRound counts one backfill round.
func (r *Recorder) RecordBackfillRound() {
	r.backfillRounds++
}

// RecordBreakerTripped marks the run as having tripped the breaker.
func (r *Recorder) RecordBreakerTripped() {
	r.breakerTripped = true
}

// RecordFailure sets the failure reason if none is set yet. First writer
// wins: the earliest failure is the root cause and must not be overwritten
// by later, less informative errors.
func (r *Recorder) RecordFailure(reason string) {
	if r.failureReason == "" {
		r.failureReason = reason
	}
}

// FailureRecorded reports whether a failure reason has been set.
func (r *Recorder) FailureRecorded() bool {
	return r.failureReason != ""
}

// Snapshot returns the immutable diagnostics view. DupRate is computed
// here (0 when nothing was generated); TopDuplicates keeps the K most
// frequently repeated keys, ties broken lexicographically for stable
// output.
func (r *Recorder) Snapshot() RunDiagnostics {
	d := RunDiagnostics{
		TotalGenerated:          r.totalGenerated,
		DupCount:                r.dupCount,
		BackfillRounds:          r.backfillRounds,
		CircuitBreakerTriggered: r.breakerTripped,
		PassCount:               r.passCount,
		FailureReason:           r.failureReason,
	}
	if r.totalGenerated > 0 {
		d.DupRate = float64(r.dupCount) / float64(r.totalGenerated)
	}
	if len(r.dupHits) > 0 {
		type hit struct {
			key   string
			count int
		}
		hits := make([]hit, 0, len(r.dupHits))
		for k, c := range r.dupHits {
			hits = append(hits, hit{k, c})
		}
		sort.Slice(hits, func(i, j int) bool {
			if hits[i].count != hits[j].count {
				return hits[i].count > hits[j].count
			}
			return hits[i].key < hits[j].key
		})
		if len(hits) > r.topK {
			hits = hits[:r.topK]
		}
		d.TopDuplicates = make(map[string]int, len(hits))
		for _, h := range hits {
			d.TopDuplicates[h.key] = h.count
		}
	}
	return d
}
