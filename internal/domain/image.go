package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// ImageFile is a candidate source image found by a scan.
type ImageFile struct {
	Path      string
	Folder    string
	Name      string
	SizeBytes int64
}

func NewImageFile(path string, size int64) ImageFile {
	return ImageFile{
		Path:      path,
		Folder:    filepath.Dir(path),
		Name:      filepath.Base(path),
		SizeBytes: size,
	}
}

// Stem is the file name without its extension.
func (f ImageFile) Stem() string {
	return strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
}

// FolderGroup holds the matching images of one folder in traversal order.
type FolderGroup struct {
	Folder  string
	Members []ImageFile
}

// PreviewEntry is one row of a recursive dry-run listing.
type PreviewEntry struct {
	Image     ImageFile
	RelFolder string
	TakenAt   *time.Time
}

func IsImageExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".bmp", ".gif", ".webp", ".tiff", ".tif":
		return true
	default:
		return false
	}
}

func IsVideoExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".mp4", ".mov", ".webm", ".avi", ".mkv":
		return true
	default:
		return false
	}
}

// IsExifExtension reports whether EXIF data can usually be read from the file.
func IsExifExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".tiff", ".tif":
		return true
	default:
		return false
	}
}
