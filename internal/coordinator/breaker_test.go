package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_TripsAtThreshold(t *testing.T) {
	brk := NewBreaker(2)

	assert.False(t, brk.RecordRound(0))
	assert.False(t, brk.Tripped())
	assert.True(t, brk.RecordRound(0))
	assert.True(t, brk.Tripped())
	assert.Equal(t, 2, brk.NoProgressRounds())
}

func TestBreaker_ProgressResetsCounter(t *testing.T) {
	brk := NewBreaker(2)

	assert.False(t, brk.RecordRound(0))
	assert.False(t, brk.RecordRound(3))
	assert.Equal(t, 0, brk.NoProgressRounds())
	// The reset means one more empty round is not enough to trip.
	assert.False(t, brk.RecordRound(0))
	assert.True(t, brk.RecordRound(0))
}

func TestBreaker_StaysTripped(t *testing.T) {
	brk := NewBreaker(2)
	brk.RecordRound(0)
	brk.RecordRound(0)
	assert.True(t, brk.Tripped())

	// Late progress cannot untrip within a run.
	assert.True(t, brk.RecordRound(5))
	assert.True(t, brk.Tripped())
}

func TestBreaker_DefaultThreshold(t *testing.T) {
	brk := NewBreaker(0)
	assert.False(t, brk.RecordRound(0))
	assert.True(t, brk.RecordRound(0))
}
