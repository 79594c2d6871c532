package normalizing_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cartographer/internal/config"
	"cartographer/internal/ledger"
	"cartographer/internal/logging"
	"cartographer/internal/normalizing"
	"cartographer/internal/testsupport"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.MapsDir, 0o755); err != nil {
		t.Fatalf("create maps dir: %v", err)
	}
	return cfg
}

const infoDoc = `{"_version":"2.0.0","_songName":"Song","_levelAuthorName":"Beat Sage","_customData":{"_editors":{}}}`

func TestRunExtractsAndSanitizes(t *testing.T) {
	cfg := testConfig(t)
	testsupport.WriteZip(t, filepath.Join(cfg.Paths.MapsDir, "Beat Sage_Song Title.mp3 (v2-flow S9).zip"), map[string]string{
		"Info.dat":       infoDoc,
		"ExpertPlus.dat": `{"_notes":[{"_time":1,"_customData":{"x":1}}]}`,
	})

	pipeline := normalizing.NewPipeline(cfg, nil, logging.NewNop())
	counts, err := pipeline.Run(context.Background(), ledger.NewRunID())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if counts.Extracted != 1 || counts.Sanitized != 1 || counts.FailedArchives != 0 || counts.FailedFolders != 0 {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	folder := filepath.Join(cfg.Paths.MapsDir, "Song Title")
	info, err := os.ReadFile(filepath.Join(folder, "Info.dat"))
	if err != nil {
		t.Fatalf("read info: %v", err)
	}
	if strings.Contains(string(info), "_customData") {
		t.Fatalf("info still carries custom data: %s", info)
	}
	if !strings.Contains(string(info), cfg.Postprocess.AuthorName) {
		t.Fatalf("info missing author name: %s", info)
	}
	diff, err := os.ReadFile(filepath.Join(folder, "ExpertPlus.dat"))
	if err != nil {
		t.Fatalf("read difficulty: %v", err)
	}
	if strings.Contains(string(diff), "_customData") {
		t.Fatalf("difficulty still carries custom data: %s", diff)
	}
}

func TestRunSanitizesPreexistingFolders(t *testing.T) {
	cfg := testConfig(t)
	folder := filepath.Join(cfg.Paths.MapsDir, "Old Map")
	testsupport.WriteFile(t, filepath.Join(folder, "Info.dat"), []byte(infoDoc))

	pipeline := normalizing.NewPipeline(cfg, nil, logging.NewNop())
	counts, err := pipeline.Run(context.Background(), ledger.NewRunID())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if counts.Total() != 0 {
		t.Fatalf("expected no archives, got %+v", counts)
	}
	if counts.Sanitized != 1 {
		t.Fatalf("expected preexisting folder sanitized, got %+v", counts)
	}

	info, err := os.ReadFile(filepath.Join(folder, "Info.dat"))
	if err != nil {
		t.Fatalf("read info: %v", err)
	}
	if strings.Contains(string(info), "_customData") {
		t.Fatalf("info still carries custom data: %s", info)
	}
}

func TestRunContinuesPastBadArchive(t *testing.T) {
	cfg := testConfig(t)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.MapsDir, "broken.zip"), []byte("not a zip"))
	testsupport.WriteZip(t, filepath.Join(cfg.Paths.MapsDir, "good.zip"), map[string]string{"Info.dat": infoDoc})

	pipeline := normalizing.NewPipeline(cfg, nil, logging.NewNop())
	counts, err := pipeline.Run(context.Background(), ledger.NewRunID())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if counts.FailedArchives != 1 || counts.Extracted != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.MapsDir, "good")); err != nil {
		t.Fatalf("good archive not extracted: %v", err)
	}
}

func TestRunFolderWithoutInfoIsWarning(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(filepath.Join(cfg.Paths.MapsDir, "No Info"), 0o755); err != nil {
		t.Fatalf("create folder: %v", err)
	}

	pipeline := normalizing.NewPipeline(cfg, nil, logging.NewNop())
	counts, err := pipeline.Run(context.Background(), ledger.NewRunID())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if counts.Warnings != 1 || counts.FailedFolders != 0 {
		t.Fatalf("missing info should warn, not fail: %+v", counts)
	}
	if counts.Sanitized != 1 {
		t.Fatalf("folder should still count as processed: %+v", counts)
	}
}

func TestRunRecordsLedgerOutcomes(t *testing.T) {
	cfg := testConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.WriteZip(t, filepath.Join(cfg.Paths.MapsDir, "fresh.zip"), map[string]string{"Info.dat": infoDoc})
	if err := os.MkdirAll(filepath.Join(cfg.Paths.MapsDir, "seen"), 0o755); err != nil {
		t.Fatalf("create folder: %v", err)
	}
	testsupport.WriteZip(t, filepath.Join(cfg.Paths.MapsDir, "seen.zip"), map[string]string{"Info.dat": infoDoc})

	pipeline := normalizing.NewPipeline(cfg, store, logging.NewNop())
	runID := ledger.NewRunID()
	if _, err := pipeline.Run(context.Background(), runID); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	items, err := store.ListRun(context.Background(), runID)
	if err != nil {
		t.Fatalf("list run items: %v", err)
	}
	statuses := map[ledger.Status]int{}
	for _, item := range items {
		statuses[item.Status]++
	}
	if statuses[ledger.StatusSanitized] != 1 || statuses[ledger.StatusSkipped] != 1 {
		t.Fatalf("unexpected ledger statuses: %v", statuses)
	}
}

func TestRunMissingMapsDirFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	pipeline := normalizing.NewPipeline(cfg, nil, logging.NewNop())
	if _, err := pipeline.Run(context.Background(), ledger.NewRunID()); err == nil {
		t.Fatal("expected error for missing maps directory")
	}
}
