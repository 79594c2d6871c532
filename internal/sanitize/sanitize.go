package sanitize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// infoFileName is the metadata document every map folder carries.
const infoFileName = "Info.dat"

// trackedArrayKeys are the difficulty document arrays whose object elements
// may carry a vendor `_customData` field.
var trackedArrayKeys = []string{
	"_notes",
	"_sliders",
	"_obstacles",
	"_events",
	"_chains",
	"_waypoints",
}

// ErrNoInfo reports a map folder without an Info.dat. It is a warning
// condition: the folder's difficulty documents are still sanitized.
var ErrNoInfo = errors.New("no Info.dat in folder")

// FileResult describes the sanitization of a single document.
type FileResult struct {
	Path    string
	Changed bool
	Err     error
}

// indentOpts matches the output format the level editor expects: 2-space
// indentation, member order untouched, non-ASCII left literal.
var indentOpts = &pretty.Options{Indent: "  "}

// FindInfo locates the info document: exact Info.dat at the folder root,
// falling back to a case-insensitive name match (not recursive). Returns
// ErrNoInfo when the folder has none.
func FindInfo(folder string) (string, error) {
	direct := filepath.Join(folder, infoFileName)
	if _, err := os.Stat(direct); err == nil {
		return direct, nil
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return "", fmt.Errorf("read folder: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(entry.Name(), infoFileName) {
			return filepath.Join(folder, entry.Name()), nil
		}
	}
	return "", ErrNoInfo
}

// Info sanitizes the folder's metadata document: sets _levelAuthorName to
// authorName, deletes _creator and the top-level _customData, preserves
// everything else verbatim, and rewrites with stable indentation.
func Info(folder, authorName string) FileResult {
	path, err := FindInfo(folder)
	if err != nil {
		return FileResult{Path: folder, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: fmt.Errorf("read info: %w", err)}
	}
	doc := string(data)
	if !gjson.Valid(doc) {
		return FileResult{Path: path, Err: errors.New("parse info: invalid JSON")}
	}

	doc, err = sjson.Set(doc, "_levelAuthorName", authorName)
	if err != nil {
		return FileResult{Path: path, Err: fmt.Errorf("set author: %w", err)}
	}
	for _, key := range []string{"_creator", "_customData"} {
		doc, err = sjson.Delete(doc, key)
		if err != nil && !isPathMissing(err) {
			return FileResult{Path: path, Err: fmt.Errorf("delete %s: %w", key, err)}
		}
	}

	if err := writeDocument(path, doc); err != nil {
		return FileResult{Path: path, Err: err}
	}
	return FileResult{Path: path, Changed: true}
}

// Difficulties sanitizes every *.dat in the folder except the info document
// (case-insensitive exclusion): drops the top-level _customData and the
// _customData of every object element under the tracked array keys. A file
// is rewritten only when at least one deletion occurred, so untouched
// documents stay byte-identical. One result per file; a file's error never
// stops its siblings.
func Difficulties(folder string) []FileResult {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return []FileResult{{Path: folder, Err: fmt.Errorf("read folder: %w", err)}}
	}

	var results []FileResult
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), ".dat") {
			continue
		}
		if strings.EqualFold(name, infoFileName) {
			continue
		}
		results = append(results, difficultyFile(filepath.Join(folder, name)))
	}
	return results
}

func difficultyFile(path string) FileResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: fmt.Errorf("read difficulty: %w", err)}
	}
	doc := string(data)
	if !gjson.Valid(doc) {
		return FileResult{Path: path, Err: errors.New("parse difficulty: invalid JSON")}
	}

	modified := false

	if gjson.Get(doc, "_customData").Exists() {
		if doc, err = sjson.Delete(doc, "_customData"); err != nil {
			return FileResult{Path: path, Err: fmt.Errorf("delete _customData: %w", err)}
		}
		modified = true
	}

	for _, key := range trackedArrayKeys {
		value := gjson.Get(doc, key)
		if !value.IsArray() {
			continue
		}
		for i := range value.Array() {
			elementPath := key + "." + strconv.Itoa(i) + "._customData"
			if !gjson.Get(doc, elementPath).Exists() {
				continue
			}
			if doc, err = sjson.Delete(doc, elementPath); err != nil {
				return FileResult{Path: path, Err: fmt.Errorf("delete %s: %w", elementPath, err)}
			}
			modified = true
		}
	}

	if !modified {
		return FileResult{Path: path}
	}
	if err := writeDocument(path, doc); err != nil {
		return FileResult{Path: path, Err: err}
	}
	return FileResult{Path: path, Changed: true}
}

func writeDocument(path, doc string) error {
	formatted := pretty.PrettyOptions([]byte(doc), indentOpts)
	if err := os.WriteFile(path, formatted, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// isPathMissing filters the sjson error for deleting a path that does not
// exist, which is not a failure here.
func isPathMissing(err error) bool {
	return err != nil && strings.Contains(err.Error(), "path does not exist")
}
