package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a-genx.mp4")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	filesystem := OSFS{}
	if ok, err := filesystem.Exists(path); err != nil || !ok {
		t.Fatalf("expected %s to exist, got %v %v", path, ok, err)
	}
	if ok, err := filesystem.Exists(filepath.Join(dir, "missing.mp4")); err != nil || ok {
		t.Fatalf("expected missing file, got %v %v", ok, err)
	}
}

func TestMkdirAllIsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "videos", "char1")
	filesystem := OSFS{}
	for i := 0; i < 2; i++ {
		if err := filesystem.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir attempt %d: %v", i+1, err)
		}
	}
	info, err := filesystem.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory, got %v", err)
	}
}
