package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"actbatch/internal/config"
	"actbatch/internal/domain"
	"actbatch/internal/logging"
)

// ErrNoArtifact marks a generation call that returned neither an error nor an
// artifact.
var ErrNoArtifact = errors.New("generator returned no artifact")

// Report is everything a dispatch run produced, including partial runs.
type Report struct {
	Results []domain.ProcessingResult
	State   domain.ProgressState
}

// Dispatcher drives the generation call once per planned image, strictly one
// after another, pausing a fixed delay after every item.
type Dispatcher struct {
	FS         FileSystem
	Generator  Generator
	Logger     logging.Logger
	Recorder   Recorder
	OnProgress ProgressFunc
	Sleep      SleepFunc
	Tracker    *Tracker
	Now        func() time.Time
}

// Run dispatches groups in order. Item failures are recorded and never stop
// the run. Cancellation is checked before every item and during the delay;
// on cancellation the results recorded so far are returned with ctx.Err().
func (d *Dispatcher) Run(ctx context.Context, groups []domain.FolderGroup, cfg config.Config) (Report, error) {
	if d.FS == nil || d.Generator == nil {
		return Report{}, errors.New("dispatcher requires FS and Generator")
	}
	sleep := d.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	tracker := d.Tracker
	if tracker == nil {
		tracker = NewTracker(now)
	}

	var items []domain.ImageFile
	for _, group := range groups {
		items = append(items, group.Members...)
	}
	tracker.Start(len(items))

	stop := d.Logger.Measure("Dispatch")
	defer stop()

	results := make([]domain.ProcessingResult, 0, len(items))
	delay := cfg.Delay()
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return Report{Results: results, State: tracker.Snapshot()}, err
		}

		d.emit(domain.ProgressEvent{
			Phase:     domain.PhaseStarted,
			Processed: i,
			Total:     len(items),
			Current:   item.Name,
		})

		result := d.dispatchOne(ctx, item, cfg, now)
		results = append(results, result)
		tracker.Record(result)
		if d.Recorder != nil {
			d.Recorder.ObserveResult(result)
		}

		if result.Succeeded() {
			d.Logger.Infof("[%d/%d] Completed: %s", i+1, len(items), item.Name)
		} else {
			d.Logger.Errorf("[%d/%d] Failed: %s: %v", i+1, len(items), item.Name, result.Err)
		}
		d.emit(domain.ProgressEvent{
			Phase:     domain.PhaseFinished,
			Processed: i + 1,
			Total:     len(items),
			Current:   item.Name,
			Outcome:   result.Outcome,
		})

		if delay > 0 {
			if err := sleep(ctx, delay); err != nil {
				return Report{Results: results, State: tracker.Snapshot()}, err
			}
		}
	}

	return Report{Results: results, State: tracker.Snapshot()}, nil
}

func (d *Dispatcher) dispatchOne(ctx context.Context, item domain.ImageFile, cfg config.Config, now func() time.Time) domain.ProcessingResult {
	dest := DestinationFor(item, cfg)
	result := domain.ProcessingResult{
		Source:            item,
		DestinationFolder: dest,
		Outcome:           domain.OutcomeFailure,
	}
	start := now()

	if err := d.FS.MkdirAll(dest, 0o755); err != nil {
		result.Err = fmt.Errorf("create output folder %s: %w", dest, err)
		return finish(&result, start, now)
	}

	d.Logger.Verbosef("Generating %s -> %s", item.Path, dest)
	artifact, err := d.generate(ctx, item.Path, dest)
	switch {
	case err != nil:
		result.Err = err
	case artifact == "":
		result.Err = ErrNoArtifact
	default:
		result.Outcome = domain.OutcomeSuccess
		result.Artifact = artifact
	}
	return finish(&result, start, now)
}

// generate turns a panicking generator into an ordinary item failure.
func (d *Dispatcher) generate(ctx context.Context, imagePath, dest string) (artifact string, err error) {
	defer func() {
		if r := recover(); r != nil {
			artifact = ""
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()
	return d.Generator.Generate(ctx, imagePath, dest)
}

func finish(result *domain.ProcessingResult, start time.Time, now func() time.Time) domain.ProcessingResult {
	result.Timestamp = now()
	result.Duration = result.Timestamp.Sub(start)
	return *result
}

func (d *Dispatcher) emit(event domain.ProgressEvent) {
	if d.OnProgress != nil {
		d.OnProgress(event)
	}
}
