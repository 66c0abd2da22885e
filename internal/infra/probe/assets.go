package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"actbatch/internal/domain"
	"actbatch/internal/logging"
)

// Asset is a driver video available for selection.
type Asset struct {
	Path      string
	Name      string
	SizeBytes int64
	// Duration is zero when probing failed.
	Duration time.Duration
}

// Label is the duration when known, else the human readable size.
func (a Asset) Label() string {
	if a.Duration > 0 {
		return FormatDuration(a.Duration)
	}
	return humanize.IBytes(uint64(a.SizeBytes))
}

// Lister finds driver videos in an assets directory.
type Lister struct {
	Duration DurationFunc
	Logger   logging.Logger
}

// List returns the video files directly inside dir, in name order. Probing is
// best effort; a missing dir is an error.
func (l Lister) List(ctx context.Context, dir string) ([]Asset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read assets %s: %w", dir, err)
	}
	probe := l.Duration
	if probe == nil {
		probe = Duration
	}

	var assets []Asset
	for _, entry := range entries {
		if entry.IsDir() || !domain.IsVideoExtension(filepath.Ext(entry.Name())) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			l.Logger.Verbosef("Skipping %s: %v", entry.Name(), err)
			continue
		}
		asset := Asset{
			Path:      filepath.Join(dir, entry.Name()),
			Name:      entry.Name(),
			SizeBytes: info.Size(),
		}
		if d, err := probe(ctx, asset.Path); err == nil {
			asset.Duration = d
		} else {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			l.Logger.Verbosef("Could not probe %s: %v", asset.Name, err)
		}
		assets = append(assets, asset)
	}
	return assets, nil
}
