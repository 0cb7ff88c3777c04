package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAssignsRandomID(t *testing.T) {
	s1 := New()
	s2 := New()
	assert.NotEqual(t, s1.ID, s2.ID)
}

func TestNextPlanStepTileIDsStartAtOneAndIncrement(t *testing.T) {
	s := New()
	assert.Equal(t, 1, s.NextPlanID())
	assert.Equal(t, 2, s.NextPlanID())
	assert.Equal(t, 3, s.NextPlanID())

	assert.Equal(t, 1, s.NextStepID())
	assert.Equal(t, 2, s.NextStepID())

	assert.Equal(t, 1, s.NextTileID())
}

func TestPlanStepTileCountersAreIndependent(t *testing.T) {
	s := New()
	s.NextPlanID()
	s.NextPlanID()
	s.NextStepID()
	s.NextTileID()
	s.NextTileID()
	s.NextTileID()

	plans, steps, tiles, terms := s.Counts()
	assert.Equal(t, 2, plans)
	assert.Equal(t, 1, steps)
	assert.Equal(t, 3, tiles)
	assert.Equal(t, 0, terms)
}

func TestTrackIncrementsTermCount(t *testing.T) {
	s := New()
	s.Track()
	s.Track()
	s.Track()

	_, _, _, terms := s.Counts()
	assert.Equal(t, 3, terms)
}

func TestRecordFailureAccumulatesInOrder(t *testing.T) {
	s := New()
	assert.Empty(t, s.Failures())

	s.RecordFailure("first failure")
	s.RecordFailure("second failure")

	failures := s.Failures()
	assert.Equal(t, []string{"first failure", "second failure"}, failures)
}

func TestCountsSnapshotReflectsCurrentState(t *testing.T) {
	s := New()
	plans, steps, tiles, terms := s.Counts()
	assert.Zero(t, plans)
	assert.Zero(t, steps)
	assert.Zero(t, tiles)
	assert.Zero(t, terms)

	s.NextPlanID()
	s.NextStepID()
	s.NextTileID()
	s.Track()

	plans, steps, tiles, terms = s.Counts()
	assert.Equal(t, 1, plans)
	assert.Equal(t, 1, steps)
	assert.Equal(t, 1, tiles)
	assert.Equal(t, 1, terms)
}
