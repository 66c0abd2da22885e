package app

import (
	"actbatch/internal/config"
	"actbatch/internal/domain"
)

// DestinationFor returns the folder the generated video for image goes to.
// It never touches the filesystem.
func DestinationFor(image domain.ImageFile, cfg config.Config) string {
	if cfg.CoLocated() {
		return image.Folder
	}
	return cfg.OutputFolder
}
