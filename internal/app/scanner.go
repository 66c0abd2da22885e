package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"actbatch/internal/domain"
	"actbatch/internal/logging"
)

const rootFolderLabel = "root"

// Scanner finds matching images under a root directory. Entries that cannot
// be read are skipped; only an unreadable root fails the scan.
type Scanner struct {
	FS         FileSystem
	Exif       ExifReader
	Logger     logging.Logger
	OnProgress ScanProgressFunc
}

// Groups lists the matching images of each immediate subdirectory of root.
// Files directly in root and deeper levels are not considered, and folders
// without matches are left out.
func (s *Scanner) Groups(ctx context.Context, root, pattern string, exact bool) ([]domain.FolderGroup, error) {
	if s.FS == nil {
		return nil, errors.New("scanner requires FS")
	}
	stop := s.Logger.Measure("Scanning folders")
	defer stop()

	entries, err := s.FS.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", root, err)
	}

	var folders []string
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		if s.isDir(entry, path) {
			folders = append(folders, path)
		}
	}

	var groups []domain.FolderGroup
	for i, folder := range folders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		members := s.matchingFiles(folder, pattern, exact)
		if len(members) > 0 {
			groups = append(groups, domain.FolderGroup{Folder: folder, Members: members})
		}
		if s.OnProgress != nil {
			s.OnProgress(i+1, len(folders))
		}
	}

	s.Logger.Verbosef("Found %d folders with matches out of %d in %s", len(groups), len(folders), root)
	return groups, nil
}

func (s *Scanner) matchingFiles(folder, pattern string, exact bool) []domain.ImageFile {
	entries, err := s.FS.ReadDir(folder)
	if err != nil {
		s.Logger.Verbosef("Skipping unreadable folder %s: %v", folder, err)
		return nil
	}
	var members []domain.ImageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !selectable(entry.Name(), pattern, exact) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.Logger.Verbosef("Skipping %s: %v", entry.Name(), err)
			continue
		}
		members = append(members, domain.NewImageFile(filepath.Join(folder, entry.Name()), info.Size()))
	}
	return members
}

// Preview walks the whole subtree under root, including files directly in
// root, and returns the matches sorted by folder then name.
func (s *Scanner) Preview(ctx context.Context, root, pattern string, exact bool) ([]domain.PreviewEntry, error) {
	if s.FS == nil {
		return nil, errors.New("scanner requires FS")
	}
	stop := s.Logger.Measure("Preview scan")
	defer stop()

	var entries []domain.PreviewEntry
	err := s.FS.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			s.Logger.Verbosef("Skipping %s: %v", path, walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !selectable(d.Name(), pattern, exact) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			s.Logger.Verbosef("Skipping %s: %v", path, err)
			return nil
		}
		image := domain.NewImageFile(path, info.Size())
		entries = append(entries, domain.PreviewEntry{
			Image:     image,
			RelFolder: relativeFolder(root, image.Folder),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.attachCaptureDates(ctx, entries)

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].RelFolder != entries[j].RelFolder {
			return entries[i].RelFolder < entries[j].RelFolder
		}
		return entries[i].Image.Name < entries[j].Image.Name
	})
	return entries, nil
}

// attachCaptureDates is best effort: images without EXIF keep a nil date.
func (s *Scanner) attachCaptureDates(ctx context.Context, entries []domain.PreviewEntry) {
	if s.Exif == nil {
		return
	}
	for i := range entries {
		if !domain.IsExifExtension(filepath.Ext(entries[i].Image.Name)) {
			continue
		}
		takenAt, err := s.Exif.DateTimeOriginal(ctx, entries[i].Image.Path)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		entries[i].TakenAt = &takenAt
	}
}

func (s *Scanner) isDir(entry fs.DirEntry, path string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := s.FS.Stat(path)
	return err == nil && info.IsDir()
}

func selectable(name, pattern string, exact bool) bool {
	return domain.IsImageExtension(filepath.Ext(name)) && Matches(name, pattern, exact)
}

func relativeFolder(root, folder string) string {
	rel, err := filepath.Rel(root, folder)
	if err != nil || rel == "." {
		return rootFolderLabel
	}
	return rel
}
