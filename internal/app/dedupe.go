package app

import (
	"path/filepath"

	"actbatch/internal/config"
	"actbatch/internal/domain"
)

// ExistsFunc reports whether an output for image has already been generated.
type ExistsFunc func(image domain.ImageFile) (bool, error)

// FilterExisting splits images into those still to be generated and those
// whose output already exists. Both slices keep the input order. A probe
// error counts as "not generated yet".
func FilterExisting(images []domain.ImageFile, exists ExistsFunc) (kept, skipped []domain.ImageFile) {
	if exists == nil {
		return images, nil
	}
	for _, image := range images {
		found, err := exists(image)
		if err == nil && found {
			skipped = append(skipped, image)
			continue
		}
		kept = append(kept, image)
	}
	return kept, skipped
}

var outputExtensions = []string{".mp4", ".mov", ".webm"}

// OutputIndex is the default duplicate predicate. A video named after the
// image stem in the routed destination, or in any of Dirs, counts as an
// existing output.
type OutputIndex struct {
	FS     FileSystem
	Config config.Config
	Dirs   []string
}

func (o OutputIndex) Exists(image domain.ImageFile) (bool, error) {
	dirs := append([]string{DestinationFor(image, o.Config)}, o.Dirs...)
	stem := image.Stem()
	var firstErr error
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		for _, ext := range outputExtensions {
			found, err := o.FS.Exists(filepath.Join(dir, stem+ext))
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			if found {
				return true, nil
			}
		}
	}
	return false, firstErr
}
