package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"actbatch/internal/domain"
)

func TestTrackerCounts(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0), step: time.Second}
	tracker := NewTracker(clock.Now)
	tracker.Start(3)

	assert.Equal(t, 0, tracker.PercentComplete())
	assert.Equal(t, 3, tracker.Remaining())

	tracker.Record(domain.ProcessingResult{Outcome: domain.OutcomeSuccess})
	assert.Equal(t, 33, tracker.PercentComplete())

	tracker.Record(domain.ProcessingResult{Outcome: domain.OutcomeFailure})
	assert.Equal(t, 66, tracker.PercentComplete())
	assert.Equal(t, 1, tracker.Remaining())

	tracker.Record(domain.ProcessingResult{Outcome: domain.OutcomeSuccess})
	state := tracker.Snapshot()
	assert.Equal(t, 100, tracker.PercentComplete())
	assert.Equal(t, 3, state.Processed)
	assert.Equal(t, 2, state.Succeeded)
	assert.Equal(t, 1, state.Failed)
	assert.Positive(t, state.Elapsed)
}

func TestTrackerNeverExceedsTotal(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.Start(1)
	tracker.Record(domain.ProcessingResult{Outcome: domain.OutcomeSuccess})
	tracker.Record(domain.ProcessingResult{Outcome: domain.OutcomeSuccess})

	state := tracker.Snapshot()
	assert.Equal(t, 1, state.Processed)
	assert.Equal(t, 100, tracker.PercentComplete())
	assert.Equal(t, 0, tracker.Remaining())
}

func TestTrackerZeroTotal(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.Start(0)
	assert.Equal(t, 0, tracker.PercentComplete())
	assert.Equal(t, 0, tracker.Remaining())
	assert.Equal(t, 0, Percent(tracker.Snapshot()))
}

func TestTrackerElapsedBeforeStart(t *testing.T) {
	assert.Zero(t, NewTracker(nil).Elapsed())
}

func TestPercentFloors(t *testing.T) {
	assert.Equal(t, 14, Percent(domain.ProgressState{Processed: 1, Total: 7}))
	assert.Equal(t, 99, Percent(domain.ProgressState{Processed: 199, Total: 200}))
}
