package app

import (
	"sync"
	"time"

	"actbatch/internal/domain"
)

// Tracker aggregates dispatch results into progress counters. It is safe to
// read from a renderer goroutine while the dispatch loop records into it.
type Tracker struct {
	mu        sync.Mutex
	now       func() time.Time
	started   time.Time
	total     int
	processed int
	succeeded int
	failed    int
}

func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{now: now}
}

// Start resets the counters for a run of total items and starts the clock.
func (t *Tracker) Start(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if total < 0 {
		total = 0
	}
	t.total = total
	t.processed, t.succeeded, t.failed = 0, 0, 0
	t.started = t.now()
}

// Record counts one finished item. Results beyond total are ignored so that
// processed never exceeds total.
func (t *Tracker) Record(result domain.ProcessingResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.processed >= t.total {
		return
	}
	t.processed++
	if result.Succeeded() {
		t.succeeded++
	} else {
		t.failed++
	}
}

// PercentComplete is floor(processed/total*100), or 0 for an empty run.
func (t *Tracker) PercentComplete() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return percent(t.processed, t.total)
}

func (t *Tracker) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total - t.processed
}

func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed()
}

func (t *Tracker) Snapshot() domain.ProgressState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.ProgressState{
		Total:     t.total,
		Processed: t.processed,
		Succeeded: t.succeeded,
		Failed:    t.failed,
		Elapsed:   t.elapsed(),
	}
}

func (t *Tracker) elapsed() time.Duration {
	if t.started.IsZero() {
		return 0
	}
	return t.now().Sub(t.started)
}

func percent(processed, total int) int {
	if total <= 0 {
		return 0
	}
	return processed * 100 / total
}

// Percent is the same floor percentage for an already captured state.
func Percent(state domain.ProgressState) int {
	return percent(state.Processed, state.Total)
}
