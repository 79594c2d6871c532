package generation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"log/slog"

	"cartographer/internal/config"
	"cartographer/internal/ledger"
	"cartographer/internal/logging"
	"cartographer/internal/naming"
	"cartographer/internal/services"
)

// audioExtensions is the whitelist of source formats, lowercase with dot.
var audioExtensions = map[string]struct{}{
	".m4a":  {},
	".mp3":  {},
	".wav":  {},
	".ogg":  {},
	".flac": {},
	".aac":  {},
	".aiff": {},
}

// Pipeline iterates the songs directory and generates one map per audio
// file, strictly sequentially.
type Pipeline struct {
	cfg     *config.Config
	machine *Machine
	store   *ledger.Store
	logger  *slog.Logger
}

// NewPipeline constructs the generation pipeline. The ledger store may be
// nil; outcome persistence is best-effort.
func NewPipeline(cfg *config.Config, machine *Machine, store *ledger.Store, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		machine: machine,
		store:   store,
		logger:  logging.NewComponentLogger(logger, "generation"),
	}
}

// Run processes every candidate audio file and returns aggregate counts.
// Per-item failures are absorbed; the returned error is reserved for
// pipeline-fatal conditions (unusable maps directory, dead browser
// session, cancellation).
func (p *Pipeline) Run(ctx context.Context, runID string) (Counts, error) {
	var counts Counts

	if err := os.MkdirAll(p.cfg.Paths.MapsDir, 0o755); err != nil {
		return counts, services.Wrap(services.ErrConfiguration, "generation", "create maps directory", "", err)
	}

	audioFiles, err := listAudioFiles(p.cfg.Paths.SongsDir)
	if err != nil {
		return counts, services.Wrap(services.ErrConfiguration, "generation", "list audio files", "", err)
	}
	if len(audioFiles) == 0 {
		p.logger.Info("no audio files found", logging.String("songs_dir", p.cfg.Paths.SongsDir))
		return counts, nil
	}
	p.logger.Info("found audio files",
		logging.Int("count", len(audioFiles)),
		logging.String("songs_dir", p.cfg.Paths.SongsDir))

	for _, audioPath := range audioFiles {
		if err := ctx.Err(); err != nil {
			// Cancellation granularity is between items; the current item
			// always finishes or fails on its own terms.
			return counts, err
		}
		outcome := p.processItem(ctx, runID, audioPath)
		counts.add(outcome.Outcome)
		if outcome.Err != nil && errors.Is(outcome.Err, context.Canceled) {
			return counts, services.Wrap(services.ErrTransient, "generation", "browser session", "session lost", outcome.Err)
		}
	}
	return counts, nil
}

func (p *Pipeline) processItem(ctx context.Context, runID, audioPath string) ItemResult {
	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	logger := p.logger.With(logging.String(logging.FieldItem, filepath.Base(audioPath)))

	itemID := p.recordItem(ctx, runID, audioPath, naming.Canonicalize(stem))

	already, err := hasGeneratedArchive(p.cfg.Paths.MapsDir, stem)
	if err != nil {
		logger.Warn("could not check for existing archives", logging.Error(err))
	}
	if already {
		logger.Info("map already exists, skipping")
		p.setStatus(ctx, itemID, ledger.StatusSkipped, "")
		return ItemResult{AudioPath: audioPath, Outcome: OutcomeSkipped}
	}

	logger.Info("generating map")
	p.setStatus(ctx, itemID, ledger.StatusGenerating, "")

	result := p.machine.Generate(ctx, audioPath)
	switch result.Outcome {
	case OutcomeSucceeded:
		p.setStatus(ctx, itemID, ledger.StatusGenerated, "")
	case OutcomeTimedOut:
		p.setStatus(ctx, itemID, ledger.StatusTimedOut, errorMessage(result.Err))
	default:
		p.setStatus(ctx, itemID, ledger.StatusFailed, errorMessage(result.Err))
	}
	return result
}

// recordItem writes the ledger row for an item; the ledger is advisory, so
// failures log and return a zero ID.
func (p *Pipeline) recordItem(ctx context.Context, runID, audioPath, canonicalKey string) int64 {
	if p.store == nil {
		return 0
	}
	item, err := p.store.Record(ctx, runID, audioPath, canonicalKey)
	if err != nil {
		p.logger.Warn("could not record ledger item", logging.Error(err))
		return 0
	}
	return item.ID
}

func (p *Pipeline) setStatus(ctx context.Context, itemID int64, status ledger.Status, message string) {
	if p.store == nil || itemID == 0 {
		return
	}
	if err := p.store.SetStatus(ctx, itemID, status, message); err != nil {
		p.logger.Warn("could not update ledger item", logging.Error(err))
	}
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// listAudioFiles returns the whitelisted audio files in dir, sorted by path
// for deterministic processing order.
func listAudioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read songs directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := audioExtensions[ext]; ok {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// hasGeneratedArchive reports whether mapsDir already holds a zip whose
// name contains the audio stem. A name heuristic, not a content check:
// collisions count as already generated.
func hasGeneratedArchive(mapsDir, stem string) (bool, error) {
	entries, err := os.ReadDir(mapsDir)
	if err != nil {
		return false, fmt.Errorf("read maps directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.EqualFold(filepath.Ext(name), ".zip") && strings.Contains(name, stem) {
			return true, nil
		}
	}
	return false, nil
}
