package app

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"actbatch/internal/domain"
)

type mockFS struct {
	entries  []mockEntry
	exists   map[string]bool
	existErr map[string]error
	readErr  map[string]error
	mkdirErr map[string]error

	mu     sync.Mutex
	mkdirs []string
}

type mockEntry struct {
	path  string
	isDir bool
	size  int64
}

func (m *mockFS) ReadDir(path string) ([]fs.DirEntry, error) {
	if err := m.readErr[path]; err != nil {
		return nil, err
	}
	found := false
	var out []fs.DirEntry
	for _, entry := range m.entries {
		if entry.path == path && entry.isDir {
			found = true
		}
		if filepath.Dir(entry.path) == path {
			out = append(out, mockDirEntry{name: filepath.Base(entry.path), isDir: entry.isDir, size: entry.size})
		}
	}
	if !found && len(out) == 0 {
		return nil, fs.ErrNotExist
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (m *mockFS) WalkDir(root string, fn fs.WalkDirFunc) error {
	for _, entry := range m.entries {
		if entry.path != root && !strings.HasPrefix(entry.path, root+string(filepath.Separator)) {
			continue
		}
		dirEntry := mockDirEntry{name: filepath.Base(entry.path), isDir: entry.isDir, size: entry.size}
		if err := fn(entry.path, dirEntry, nil); err != nil {
			if err == filepath.SkipDir {
				continue
			}
			return err
		}
	}
	return nil
}

func (m *mockFS) Stat(path string) (fs.FileInfo, error) {
	for _, entry := range m.entries {
		if entry.path == path {
			return mockFileInfo{name: filepath.Base(path), isDir: entry.isDir, size: entry.size}, nil
		}
	}
	return nil, fs.ErrNotExist
}

func (m *mockFS) Exists(path string) (bool, error) {
	if err := m.existErr[path]; err != nil {
		return false, err
	}
	return m.exists[path], nil
}

func (m *mockFS) MkdirAll(path string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirs = append(m.mkdirs, path)
	return m.mkdirErr[path]
}

type mockDirEntry struct {
	name  string
	isDir bool
	size  int64
}

func (m mockDirEntry) Name() string { return m.name }
func (m mockDirEntry) IsDir() bool  { return m.isDir }
func (m mockDirEntry) Type() fs.FileMode {
	if m.isDir {
		return fs.ModeDir
	}
	return 0
}
func (m mockDirEntry) Info() (fs.FileInfo, error) {
	return mockFileInfo{name: m.name, isDir: m.isDir, size: m.size}, nil
}

type mockFileInfo struct {
	name  string
	isDir bool
	size  int64
}

func (m mockFileInfo) Name() string       { return m.name }
func (m mockFileInfo) Size() int64        { return m.size }
func (m mockFileInfo) Mode() fs.FileMode  { return 0 }
func (m mockFileInfo) ModTime() time.Time { return time.Time{} }
func (m mockFileInfo) IsDir() bool        { return m.isDir }
func (m mockFileInfo) Sys() interface{}   { return nil }

// mockGenerator answers per image name; unknown names succeed with
// "<dest>/<stem>.mp4".
type mockGenerator struct {
	errs   map[string]error
	panics map[string]bool
	empty  map[string]bool
	calls  []generateCall
}

type generateCall struct {
	image string
	dest  string
}

func (m *mockGenerator) Generate(ctx context.Context, imagePath, outputFolder string) (string, error) {
	m.calls = append(m.calls, generateCall{image: imagePath, dest: outputFolder})
	name := filepath.Base(imagePath)
	if m.panics[name] {
		panic("boom")
	}
	if err := m.errs[name]; err != nil {
		return "", err
	}
	if m.empty[name] {
		return "", nil
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(outputFolder, stem+".mp4"), nil
}

type mockRecorder struct {
	results []domain.ProcessingResult
	skipped int
}

func (m *mockRecorder) ObserveResult(result domain.ProcessingResult) {
	m.results = append(m.results, result)
}

func (m *mockRecorder) ObserveSkipped(count int) {
	m.skipped += count
}

// fakeClock advances by step on every reading.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func imageAt(path string) domain.ImageFile {
	return domain.NewImageFile(path, 1)
}

func group(folder string, names ...string) domain.FolderGroup {
	g := domain.FolderGroup{Folder: folder}
	for _, name := range names {
		g.Members = append(g.Members, imageAt(filepath.Join(folder, name)))
	}
	return g
}
