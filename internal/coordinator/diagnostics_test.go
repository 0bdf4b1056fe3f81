package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecorder_DupRate(t *testing.T) {
	t.Run("zero when nothing generated", func(t *testing.T) {
		rec := NewRecorder(0)
		assert.Equal(t, 0.0, rec.Snapshot().DupRate)
	})

	t.Run("computed at snapshot time", func(t *testing.T) {
		rec := NewRecorder(0)
		rec.RecordRound(50, 25)
		rec.RecordRound(25, 0)
		d := rec.Snapshot()
		assert.Equal(t, 75, d.TotalGenerated)
		assert.Equal(t, 25, d.DupCount)
		assert.InDelta(t, 25.0/75.0, d.DupRate, 1e-9)
	})
}

func TestRecorder_FirstFailureWins(t *testing.T) {
	rec := NewRecorder(0)
	assert.False(t, rec.FailureRecorded())

	rec.RecordFailure("root cause")
	rec.RecordFailure("later, less informative")

	assert.True(t, rec.FailureRecorded())
	assert.Equal(t, "root cause", rec.Snapshot().FailureReason)
}

func TestRecorder_TopDuplicates(t *testing.T) {
	rec := NewRecorder(2)
	for i := 0; i < 5; i++ {
		rec.RecordDuplicate("the office")
	}
	for i := 0; i < 3; i++ {
		rec.RecordDuplicate("friends")
	}
	rec.RecordDuplicate("frasier")

	top := rec.Snapshot().TopDuplicates
	assert.Len(t, top, 2)
	assert.Equal(t, 5, top["the office"])
	assert.Equal(t, 3, top["friends"])
	assert.NotContains(t, top, "frasier")
}

func TestRecorder_SnapshotCounters(t *testing.T) {
	rec := NewRecorder(0)
	rec.RecordPass()
	rec.RecordPass()
	rec.RecordBackfillRound()
	rec.RecordBreakerTripped()

	d := rec.Snapshot()
	assert.Equal(t, 2, d.PassCount)
	assert.Equal(t, 1, d.BackfillRounds)
	assert.True(t, d.CircuitBreakerTriggered)
	assert.Empty(t, d.FailureReason)
}
