package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"cartographer/internal/fileutil"
)

func TestCopyFilePreservesContent(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src.bin")
	dst := filepath.Join(tmp, "dst.bin")
	payload := []byte("zip bytes\x00\x01")
	if err := os.WriteFile(src, payload, 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	if err := fileutil.CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile returned error: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("content mismatch: %q", got)
	}
}

func TestMoveFileCreatesDestinationDir(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "download.zip")
	dst := filepath.Join(tmp, "maps", "download.zip")
	if err := os.WriteFile(src, []byte("archive"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	if err := fileutil.MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile returned error: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("source should be gone, err=%v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("destination missing: %v", err)
	}
}

func TestUniquePath(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "map.zip")
	if got := fileutil.UniquePath(path); got != path {
		t.Fatalf("fresh path should be unchanged, got %q", got)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := filepath.Join(tmp, "map (2).zip")
	if got := fileutil.UniquePath(path); got != want {
		t.Fatalf("UniquePath = %q, want %q", got, want)
	}
}
