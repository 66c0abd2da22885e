package app

import (
	"context"
	"io/fs"
	"time"

	"actbatch/internal/domain"
)

type FileSystem interface {
	ReadDir(path string) ([]fs.DirEntry, error)
	WalkDir(root string, fn fs.WalkDirFunc) error
	Stat(path string) (fs.FileInfo, error)
	Exists(path string) (bool, error)
	MkdirAll(path string, perm fs.FileMode) error
}

// Generator is the remote generation boundary. A call succeeds when it returns
// a non-empty artifact and a nil error.
type Generator interface {
	Generate(ctx context.Context, imagePath, outputFolder string) (string, error)
}

type ExifReader interface {
	DateTimeOriginal(ctx context.Context, path string) (time.Time, error)
}

// Recorder observes dispatch outcomes, typically for metrics.
type Recorder interface {
	ObserveResult(result domain.ProcessingResult)
	ObserveSkipped(count int)
}

// ProgressFunc receives dispatch progress events.
type ProgressFunc func(event domain.ProgressEvent)

// ScanProgressFunc is called during scanning to report progress
type ScanProgressFunc func(current, total int)

// SleepFunc pauses the dispatch loop and returns early with ctx.Err() when
// the context is cancelled.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
