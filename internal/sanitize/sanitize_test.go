package sanitize_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"cartographer/internal/sanitize"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestInfoSetsAuthorAndStripsVendorKeys(t *testing.T) {
	folder := t.TempDir()
	writeFile(t, folder, "Info.dat", `{
  "_version": "2.0.0",
  "_songName": "Café del Mar",
  "_levelAuthorName": "Beat Sage",
  "_creator": "Beat Sage",
  "_customData": {"_contributors": []},
  "_beatsPerMinute": 128
}`)

	result := sanitize.Info(folder, "MapAuthor")
	if result.Err != nil {
		t.Fatalf("Info returned error: %v", result.Err)
	}

	data, err := os.ReadFile(filepath.Join(folder, "Info.dat"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	doc := string(data)

	if got := gjson.Get(doc, "_levelAuthorName").String(); got != "MapAuthor" {
		t.Fatalf("_levelAuthorName = %q", got)
	}
	if gjson.Get(doc, "_creator").Exists() || gjson.Get(doc, "_customData").Exists() {
		t.Fatalf("vendor keys not removed: %s", doc)
	}
	if got := gjson.Get(doc, "_songName").String(); got != "Café del Mar" {
		t.Fatalf("_songName changed: %q", got)
	}
	if gjson.Get(doc, "_beatsPerMinute").Int() != 128 {
		t.Fatal("_beatsPerMinute changed")
	}
	if !strings.Contains(doc, `é`) {
		t.Fatalf("non-ASCII characters must stay literal, got: %s", doc)
	}
	if strings.Contains(doc, `é`) {
		t.Fatalf("non-ASCII characters must not be escaped, got: %s", doc)
	}

	// Member order is preserved: _version is still first, _songName second.
	keys := make([]string, 0, 4)
	gjson.Parse(doc).ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	if len(keys) < 2 || keys[0] != "_version" || keys[1] != "_songName" {
		t.Fatalf("member order changed: %v", keys)
	}
}

func TestInfoCaseInsensitiveFallback(t *testing.T) {
	folder := t.TempDir()
	writeFile(t, folder, "info.DAT", `{"_levelAuthorName": "x"}`)

	result := sanitize.Info(folder, "Author")
	if result.Err != nil {
		t.Fatalf("Info returned error: %v", result.Err)
	}
	data, _ := os.ReadFile(filepath.Join(folder, "info.DAT"))
	if gjson.Get(string(data), "_levelAuthorName").String() != "Author" {
		t.Fatalf("fallback file not sanitized: %s", data)
	}
}

func TestInfoMissingIsWarning(t *testing.T) {
	result := sanitize.Info(t.TempDir(), "Author")
	if !errors.Is(result.Err, sanitize.ErrNoInfo) {
		t.Fatalf("expected ErrNoInfo, got %v", result.Err)
	}
}

func TestDifficultiesStripCustomData(t *testing.T) {
	folder := t.TempDir()
	writeFile(t, folder, "Info.dat", `{}`)
	writeFile(t, folder, "ExpertPlus.dat", `{
  "_version": "2.0.0",
  "_customData": {"_time": 1},
  "_notes": [
    {"_time": 1, "_customData": {"x": 1}},
    {"_time": 2},
    "not-an-object"
  ],
  "_obstacles": [{"_duration": 4, "_customData": {}}],
  "_events": "not-a-list"
}`)

	results := sanitize.Difficulties(folder)
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if results[0].Err != nil || !results[0].Changed {
		t.Fatalf("unexpected result: %+v", results[0])
	}

	data, _ := os.ReadFile(filepath.Join(folder, "ExpertPlus.dat"))
	doc := string(data)
	if gjson.Get(doc, "_customData").Exists() {
		t.Fatal("top-level _customData survived")
	}
	for _, path := range []string{"_notes.0._customData", "_obstacles.0._customData"} {
		if gjson.Get(doc, path).Exists() {
			t.Fatalf("%s survived: %s", path, doc)
		}
	}
	if gjson.Get(doc, "_notes.0._time").Int() != 1 || gjson.Get(doc, "_notes.1._time").Int() != 2 {
		t.Fatalf("note fields damaged: %s", doc)
	}
	if gjson.Get(doc, "_notes.2").String() != "not-an-object" {
		t.Fatalf("non-object element damaged: %s", doc)
	}
	if gjson.Get(doc, "_events").String() != "not-a-list" {
		t.Fatalf("non-list key damaged: %s", doc)
	}
}

func TestDifficultiesSkipRewriteWithoutDeletions(t *testing.T) {
	folder := t.TempDir()
	body := `{"_version":"2.0.0","_notes":[{"_time":1}]}`
	path := writeFile(t, folder, "Hard.dat", body)

	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	results := sanitize.Difficulties(folder)
	if len(results) != 1 || results[0].Err != nil {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[0].Changed {
		t.Fatal("file without vendor fields must not be reported changed")
	}

	data, _ := os.ReadFile(path)
	if string(data) != body {
		t.Fatalf("file rewritten without deletions: %q", data)
	}
	after, _ := os.Stat(path)
	if !after.ModTime().Equal(before.ModTime()) {
		t.Fatal("modification time changed without deletions")
	}
}

func TestDifficultiesExcludeInfoAndReportParseErrors(t *testing.T) {
	folder := t.TempDir()
	writeFile(t, folder, "INFO.dat", `{"_customData": 1}`)
	writeFile(t, folder, "Broken.dat", `{not json`)
	writeFile(t, folder, "Normal.dat", `{"_customData": 1}`)

	results := sanitize.Difficulties(folder)
	if len(results) != 2 {
		t.Fatalf("expected two results (info excluded), got %+v", results)
	}
	var failed, cleaned int
	for _, result := range results {
		switch {
		case result.Err != nil:
			failed++
		case result.Changed:
			cleaned++
		}
	}
	if failed != 1 || cleaned != 1 {
		t.Fatalf("expected one failure and one cleaned, got %+v", results)
	}

	// The case-insensitive info exclusion left INFO.dat untouched.
	data, _ := os.ReadFile(filepath.Join(folder, "INFO.dat"))
	if !gjson.Get(string(data), "_customData").Exists() {
		t.Fatal("info document must not be treated as a difficulty file")
	}
}
