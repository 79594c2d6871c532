package normalizing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"log/slog"

	"cartographer/internal/archive"
	"cartographer/internal/config"
	"cartographer/internal/ledger"
	"cartographer/internal/logging"
	"cartographer/internal/sanitize"
	"cartographer/internal/services"
)

// Counts aggregates normalization outcomes for end-of-run reporting.
type Counts struct {
	Extracted      int
	Skipped        int
	FailedArchives int
	Sanitized      int
	FailedFolders  int
	Warnings       int
}

// Total reports how many archives the extraction pass touched.
func (c Counts) Total() int {
	return c.Extracted + c.Skipped + c.FailedArchives
}

// Pipeline extracts generated archives and sanitizes the resulting folders.
type Pipeline struct {
	cfg    *config.Config
	store  *ledger.Store
	logger *slog.Logger
}

// NewPipeline constructs the normalization pipeline. The ledger store may
// be nil; outcome persistence is best-effort.
func NewPipeline(cfg *config.Config, store *ledger.Store, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "normalizing"),
	}
}

// Run extracts every archive, then sanitizes every map folder. The two
// passes are sequential, never interleaved. The returned error is reserved
// for pipeline-fatal conditions (unreadable maps directory, cancellation).
func (p *Pipeline) Run(ctx context.Context, runID string) (Counts, error) {
	var counts Counts

	if _, err := os.Stat(p.cfg.Paths.MapsDir); err != nil {
		return counts, services.Wrap(services.ErrConfiguration, "normalizing", "maps directory", "", err)
	}

	// folder path -> ledger item for archives extracted this run, so the
	// sanitize pass can advance their status.
	extractedItems := map[string]int64{}

	if err := p.extractArchives(ctx, runID, extractedItems, &counts); err != nil {
		return counts, err
	}
	if err := p.sanitizeFolders(ctx, extractedItems, &counts); err != nil {
		return counts, err
	}
	return counts, nil
}

func (p *Pipeline) extractArchives(ctx context.Context, runID string, extractedItems map[string]int64, counts *Counts) error {
	archives, err := listArchives(p.cfg.Paths.MapsDir)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "normalizing", "list archives", "", err)
	}
	if len(archives) == 0 {
		p.logger.Info("no archives found", logging.String("maps_dir", p.cfg.Paths.MapsDir))
		return nil
	}

	for _, archivePath := range archives {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger := p.logger.With(logging.String(logging.FieldItem, filepath.Base(archivePath)))

		result := archive.Extract(archivePath, p.cfg.Paths.MapsDir)
		itemID := p.recordItem(ctx, runID, archivePath, result.CanonicalName)
		switch result.Status {
		case archive.StatusExtracted:
			counts.Extracted++
			logger.Info("extracted archive", logging.String("folder", result.CanonicalName))
			p.setStatus(ctx, itemID, ledger.StatusExtracted, "")
			if itemID != 0 {
				extractedItems[result.Folder] = itemID
			}
		case archive.StatusSkipped:
			counts.Skipped++
			logger.Info("folder already exists, skipping", logging.String("folder", result.CanonicalName))
			p.setStatus(ctx, itemID, ledger.StatusSkipped, "")
		case archive.StatusFailed:
			counts.FailedArchives++
			logger.Error("could not extract archive", logging.Error(result.Err))
			p.setStatus(ctx, itemID, ledger.StatusFailed, result.Err.Error())
		}
	}
	return nil
}

func (p *Pipeline) sanitizeFolders(ctx context.Context, extractedItems map[string]int64, counts *Counts) error {
	folders, err := listFolders(p.cfg.Paths.MapsDir)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "normalizing", "list folders", "", err)
	}

	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger := p.logger.With(logging.String(logging.FieldItem, filepath.Base(folder)))
		failed := p.sanitizeFolder(logger, folder, counts)
		if failed {
			counts.FailedFolders++
		} else {
			counts.Sanitized++
		}
		if itemID, ok := extractedItems[folder]; ok {
			if failed {
				p.setStatus(ctx, itemID, ledger.StatusFailed, "sanitize failed")
			} else {
				p.setStatus(ctx, itemID, ledger.StatusSanitized, "")
			}
		}
	}
	return nil
}

// sanitizeFolder cleans one map folder and reports whether anything in it
// failed outright. A missing info document is a warning, not a failure.
func (p *Pipeline) sanitizeFolder(logger *slog.Logger, folder string, counts *Counts) bool {
	failed := false

	info := sanitize.Info(folder, p.cfg.Postprocess.AuthorName)
	switch {
	case errors.Is(info.Err, sanitize.ErrNoInfo):
		counts.Warnings++
		logger.Warn("no info document in folder")
	case info.Err != nil:
		failed = true
		logger.Error("could not sanitize info document", logging.Error(info.Err))
	default:
		logger.Info("sanitized info document")
	}

	for _, result := range sanitize.Difficulties(folder) {
		name := filepath.Base(result.Path)
		switch {
		case result.Err != nil:
			failed = true
			logger.Error("could not sanitize difficulty document",
				logging.String("file", name), logging.Error(result.Err))
		case result.Changed:
			logger.Info("removed custom data", logging.String("file", name))
		}
	}
	return failed
}

// recordItem writes the ledger row for an archive; advisory only.
func (p *Pipeline) recordItem(ctx context.Context, runID, sourcePath, canonicalKey string) int64 {
	if p.store == nil {
		return 0
	}
	item, err := p.store.Record(ctx, runID, sourcePath, canonicalKey)
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

func listArchives(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read maps directory: %w", err)
	}
	var archives []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".zip") {
			archives = append(archives, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(archives)
	return archives, nil
}

func listFolders(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read maps directory: %w", err)
	}
	var folders []string
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(folders)
	return folders, nil
}
