package generation_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cartographer/internal/browser"
	"cartographer/internal/config"
	"cartographer/internal/generation"
	"cartographer/internal/ledger"
	"cartographer/internal/logging"
	"cartographer/internal/testsupport"
)

func seedSongs(t *testing.T, cfg *config.Config, names ...string) {
	t.Helper()
	if err := os.MkdirAll(cfg.Paths.SongsDir, 0o755); err != nil {
		t.Fatalf("create songs dir: %v", err)
	}
	if err := os.MkdirAll(cfg.Paths.MapsDir, 0o755); err != nil {
		t.Fatalf("create maps dir: %v", err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(cfg.Paths.SongsDir, name), []byte("audio"), 0o644); err != nil {
			t.Fatalf("write song %s: %v", name, err)
		}
	}
}

func TestPipelineSkipsAlreadyGenerated(t *testing.T) {
	cfg := testConfig(t)
	seedSongs(t, cfg, "alpha.m4a", "beta.mp3", "notes.txt")
	existing := filepath.Join(cfg.Paths.MapsDir, "Beat Sage_alpha (v2-flow S9).zip")
	if err := os.WriteFile(existing, []byte("zip"), 0o644); err != nil {
		t.Fatalf("write existing archive: %v", err)
	}

	driver := &fakeDriver{
		download: &browser.Download{GUID: "abc", SuggestedFilename: "Beat Sage_beta.zip"},
	}
	store := testsupport.MustOpenStore(t, cfg)

	pipeline := generation.NewPipeline(cfg, newMachine(cfg, driver), store, logging.NewNop())
	runID := ledger.NewRunID()

	counts, err := pipeline.Run(context.Background(), runID)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if counts.Skipped != 1 || counts.Succeeded != 1 || counts.Failed != 0 {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	items, err := store.ListRun(context.Background(), runID)
	if err != nil {
		t.Fatalf("ListRun returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected two ledger items (txt excluded), got %d", len(items))
	}
	statuses := map[ledger.Status]int{}
	for _, item := range items {
		statuses[item.Status]++
	}
	if statuses[ledger.StatusSkipped] != 1 || statuses[ledger.StatusGenerated] != 1 {
		t.Fatalf("unexpected ledger statuses: %v", statuses)
	}
}

func TestPipelineContinuesPastItemFailures(t *testing.T) {
	cfg := testConfig(t)
	seedSongs(t, cfg, "alpha.m4a", "beta.mp3")

	// Every upload fails; both items fail, the run itself does not.
	driver := &fakeDriver{errs: map[string]error{"upload": os.ErrPermission}}
	pipeline := generation.NewPipeline(cfg, newMachine(cfg, driver), nil, logging.NewNop())

	counts, err := pipeline.Run(context.Background(), ledger.NewRunID())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if counts.Failed != 2 || counts.Total() != 2 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestPipelineEmptySongsDirIsNoop(t *testing.T) {
	cfg := testConfig(t)
	seedSongs(t, cfg)

	pipeline := generation.NewPipeline(cfg, newMachine(cfg, &fakeDriver{}), nil, logging.NewNop())
	counts, err := pipeline.Run(context.Background(), ledger.NewRunID())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if counts.Total() != 0 {
		t.Fatalf("expected no items, got %+v", counts)
	}
}

func TestPipelineStopsBetweenItemsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	seedSongs(t, cfg, "alpha.m4a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pipeline := generation.NewPipeline(cfg, newMachine(cfg, &fakeDriver{}), nil, logging.NewNop())
	if _, err := pipeline.Run(ctx, ledger.NewRunID()); err == nil {
		t.Fatal("expected cancellation error")
	}
}
