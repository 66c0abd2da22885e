package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actbatch/internal/config"
	"actbatch/internal/domain"
)

func centralizedConfig() config.Config {
	return config.Config{OutputLocation: config.Centralized, OutputFolder: "/out"}
}

type sleepRecorder struct {
	calls []time.Duration
	err   error
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return s.err
}

func TestDispatcherCountsEveryItem(t *testing.T) {
	generator := &mockGenerator{}
	tracker := NewTracker(nil)
	var percents []int
	d := Dispatcher{
		FS:        &mockFS{},
		Generator: generator,
		Tracker:   tracker,
		OnProgress: func(event domain.ProgressEvent) {
			if event.Phase == domain.PhaseFinished {
				percents = append(percents, Percent(domain.ProgressState{Processed: event.Processed, Total: event.Total}))
			}
		},
	}
	groups := []domain.FolderGroup{
		group("/in/a", "1-genx.jpg", "2-genx.jpg"),
		group("/in/b", "3-genx.jpg"),
	}

	report, err := d.Run(context.Background(), groups, centralizedConfig())
	require.NoError(t, err)
	assert.Equal(t, []int{33, 66, 100}, percents)
	assert.Equal(t, 3, report.State.Total)
	assert.Equal(t, 3, report.State.Processed)
	assert.Equal(t, 3, report.State.Succeeded)
	assert.Equal(t, 100, tracker.PercentComplete())
	require.Len(t, report.Results, 3)
	assert.Equal(t, "/out/1-genx.mp4", report.Results[0].Artifact)
	assert.Equal(t, "/out", report.Results[2].DestinationFolder)
}

func TestDispatcherIsolatesFailures(t *testing.T) {
	tests := []struct {
		name      string
		generator *mockGenerator
	}{
		{"error", &mockGenerator{errs: map[string]error{"2.jpg": errors.New("quota exceeded")}}},
		{"panic", &mockGenerator{panics: map[string]bool{"2.jpg": true}}},
		{"no artifact", &mockGenerator{empty: map[string]bool{"2.jpg": true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Dispatcher{FS: &mockFS{}, Generator: tt.generator}
			groups := []domain.FolderGroup{group("/in", "1.jpg", "2.jpg", "3.jpg")}

			report, err := d.Run(context.Background(), groups, centralizedConfig())
			require.NoError(t, err)
			require.Len(t, report.Results, 3)
			assert.Equal(t, domain.OutcomeSuccess, report.Results[0].Outcome)
			assert.Equal(t, domain.OutcomeFailure, report.Results[1].Outcome)
			assert.Error(t, report.Results[1].Err)
			assert.Equal(t, domain.OutcomeSuccess, report.Results[2].Outcome)
			assert.Equal(t, 3, report.State.Processed)
			assert.Equal(t, 1, report.State.Failed)
			assert.Len(t, tt.generator.calls, 3, "one call per item, no retries")
		})
	}
}

func TestDispatcherZeroItems(t *testing.T) {
	sleeper := &sleepRecorder{}
	var events []domain.ProgressEvent
	d := Dispatcher{
		FS:         &mockFS{},
		Generator:  &mockGenerator{},
		Sleep:      sleeper.Sleep,
		OnProgress: func(e domain.ProgressEvent) { events = append(events, e) },
	}

	cfg := centralizedConfig()
	cfg.DelaySeconds = 5
	report, err := d.Run(context.Background(), nil, cfg)
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.Equal(t, 0, report.State.Total)
	assert.Equal(t, 0, Percent(report.State))
	assert.Empty(t, events)
	assert.Empty(t, sleeper.calls)
}

func TestDispatcherSleepsAfterEveryItem(t *testing.T) {
	sleeper := &sleepRecorder{}
	d := Dispatcher{FS: &mockFS{}, Generator: &mockGenerator{errs: map[string]error{"b.jpg": errors.New("x")}}, Sleep: sleeper.Sleep}
	cfg := centralizedConfig()
	cfg.DelaySeconds = 2

	_, err := d.Run(context.Background(), []domain.FolderGroup{group("/in", "a.jpg", "b.jpg")}, cfg)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, sleeper.calls)
}

func TestDispatcherNoDelayWhenZero(t *testing.T) {
	sleeper := &sleepRecorder{}
	d := Dispatcher{FS: &mockFS{}, Generator: &mockGenerator{}, Sleep: sleeper.Sleep}

	_, err := d.Run(context.Background(), []domain.FolderGroup{group("/in", "a.jpg")}, centralizedConfig())
	require.NoError(t, err)
	assert.Empty(t, sleeper.calls)
}

func TestDispatcherCancellationKeepsRecordedResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	generator := &mockGenerator{}
	d := Dispatcher{
		FS:        &mockFS{},
		Generator: generator,
		OnProgress: func(e domain.ProgressEvent) {
			if e.Phase == domain.PhaseFinished && e.Processed == 2 {
				cancel()
			}
		},
	}

	report, err := d.Run(ctx, []domain.FolderGroup{group("/in", "1.jpg", "2.jpg", "3.jpg")}, centralizedConfig())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, report.Results, 2)
	assert.Equal(t, 2, report.State.Processed)
	assert.Equal(t, 3, report.State.Total)
	assert.Len(t, generator.calls, 2)
}

func TestDispatcherCancellationDuringDelay(t *testing.T) {
	sleeper := &sleepRecorder{err: context.Canceled}
	d := Dispatcher{FS: &mockFS{}, Generator: &mockGenerator{}, Sleep: sleeper.Sleep}
	cfg := centralizedConfig()
	cfg.DelaySeconds = 1

	report, err := d.Run(context.Background(), []domain.FolderGroup{group("/in", "1.jpg", "2.jpg")}, cfg)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, report.Results, 1)
}

func TestDispatcherMkdirFailureIsItemFailure(t *testing.T) {
	mock := &mockFS{mkdirErr: map[string]error{"/in/a": errors.New("read-only file system")}}
	generator := &mockGenerator{}
	d := Dispatcher{FS: mock, Generator: generator}
	cfg := config.Config{OutputLocation: config.CoLocated}
	groups := []domain.FolderGroup{group("/in/a", "1.jpg"), group("/in/b", "2.jpg")}

	report, err := d.Run(context.Background(), groups, cfg)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Equal(t, domain.OutcomeFailure, report.Results[0].Outcome)
	assert.Equal(t, domain.OutcomeSuccess, report.Results[1].Outcome)
	assert.Equal(t, "/in/b", report.Results[1].DestinationFolder)
	assert.Equal(t, []generateCall{{image: "/in/b/2.jpg", dest: "/in/b"}}, generator.calls)
	assert.Equal(t, []string{"/in/a", "/in/b"}, mock.mkdirs)
}

func TestDispatcherEmitsStartedThenFinished(t *testing.T) {
	var events []domain.ProgressEvent
	d := Dispatcher{
		FS:         &mockFS{},
		Generator:  &mockGenerator{errs: map[string]error{"b.jpg": errors.New("x")}},
		OnProgress: func(e domain.ProgressEvent) { events = append(events, e) },
	}

	_, err := d.Run(context.Background(), []domain.FolderGroup{group("/in", "a.jpg", "b.jpg")}, centralizedConfig())
	require.NoError(t, err)
	assert.Equal(t, []domain.ProgressEvent{
		{Phase: domain.PhaseStarted, Processed: 0, Total: 2, Current: "a.jpg"},
		{Phase: domain.PhaseFinished, Processed: 1, Total: 2, Current: "a.jpg", Outcome: domain.OutcomeSuccess},
		{Phase: domain.PhaseStarted, Processed: 1, Total: 2, Current: "b.jpg"},
		{Phase: domain.PhaseFinished, Processed: 2, Total: 2, Current: "b.jpg", Outcome: domain.OutcomeFailure},
	}, events)
}

func TestDispatcherRecordsTimingAndMetrics(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), step: time.Second}
	recorder := &mockRecorder{}
	d := Dispatcher{FS: &mockFS{}, Generator: &mockGenerator{}, Recorder: recorder, Now: clock.Now}

	report, err := d.Run(context.Background(), []domain.FolderGroup{group("/in", "a.jpg")}, centralizedConfig())
	require.NoError(t, err)
	require.Len(t, recorder.results, 1)
	assert.Equal(t, report.Results[0], recorder.results[0])
	assert.Equal(t, time.Second, report.Results[0].Duration)
	assert.False(t, report.Results[0].Timestamp.IsZero())
}

func TestDispatcherRequiresCollaborators(t *testing.T) {
	d := Dispatcher{}
	_, err := d.Run(context.Background(), nil, centralizedConfig())
	assert.Error(t, err)
}

func TestSleepContextStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := sleepContext(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}
