package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cartographer/internal/naming"
)

// Status classifies the outcome of one extraction attempt.
type Status string

const (
	StatusExtracted Status = "extracted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Result describes what happened to one archive.
type Result struct {
	Archive       string
	CanonicalName string
	Folder        string
	Status        Status
	Err           error
}

// Extract unpacks archivePath into a folder under mapsDir named by the
// canonicalized archive stem. A pre-existing folder yields StatusSkipped.
// Failures roll back files placed directly in the new folder and remove it,
// best-effort, and yield StatusFailed; the error is carried in the Result
// rather than returned so callers keep processing sibling archives.
func Extract(archivePath, mapsDir string) Result {
	stem := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	canonical := naming.Canonicalize(stem)
	if canonical == "" {
		canonical = stem
	}
	folder := filepath.Join(mapsDir, canonical)

	result := Result{Archive: archivePath, CanonicalName: canonical, Folder: folder}

	if _, err := os.Stat(folder); err == nil {
		result.Status = StatusSkipped
		return result
	} else if !errors.Is(err, os.ErrNotExist) {
		result.Status = StatusFailed
		result.Err = fmt.Errorf("stat destination: %w", err)
		return result
	}

	if err := os.MkdirAll(folder, 0o755); err != nil {
		result.Status = StatusFailed
		result.Err = fmt.Errorf("create destination: %w", err)
		return result
	}

	if err := extractAll(archivePath, folder); err != nil {
		rollback(folder)
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	result.Status = StatusExtracted
	return result
}

func extractAll(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer reader.Close()

	for _, entry := range reader.File {
		if err := extractEntry(entry, destDir); err != nil {
			return fmt.Errorf("extract %s: %w", entry.Name, err)
		}
	}
	return nil
}

func extractEntry(entry *zip.File, destDir string) error {
	target, err := sanitizeEntryPath(destDir, entry.Name)
	if err != nil {
		return err
	}

	if entry.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	in, err := entry.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// sanitizeEntryPath rejects entries that would escape destDir (zip-slip).
func sanitizeEntryPath(destDir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes destination", name)
	}
	return filepath.Join(destDir, cleaned), nil
}

// rollback removes files placed directly in folder, then the folder itself.
// Nested directories from a partially extracted archive keep the folder
// non-empty; the final remove is best-effort and not atomic against
// concurrent readers.
func rollback(folder string) {
	entries, err := os.ReadDir(folder)
	if err == nil {
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				_ = os.Remove(filepath.Join(folder, entry.Name()))
			}
		}
	}
	_ = os.Remove(folder)
}
