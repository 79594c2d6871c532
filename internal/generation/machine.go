package generation

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"log/slog"

	"cartographer/internal/browser"
	"cartographer/internal/config"
	"cartographer/internal/logging"
	"cartographer/internal/services"
)

// Machine walks one audio file through one browser page. The page is owned
// by the caller and reused sequentially across items; the machine never
// touches it concurrently.
type Machine struct {
	driver          browser.Driver
	cfg             *config.Config
	logger          *slog.Logger
	stepTimeout     time.Duration
	downloadTimeout time.Duration
}

// Option configures the machine.
type Option func(*Machine)

// WithTimeouts overrides the per-step and download waits (primarily for
// tests).
func WithTimeouts(step, download time.Duration) Option {
	return func(m *Machine) {
		if step > 0 {
			m.stepTimeout = step
		}
		if download > 0 {
			m.downloadTimeout = download
		}
	}
}

// NewMachine constructs the generation state machine.
func NewMachine(cfg *config.Config, driver browser.Driver, logger *slog.Logger, opts ...Option) *Machine {
	machine := &Machine{
		driver:          driver,
		cfg:             cfg,
		logger:          logging.NewComponentLogger(logger, "generation"),
		stepTimeout:     time.Duration(cfg.BeatSage.StepTimeoutSeconds) * time.Second,
		downloadTimeout: time.Duration(cfg.BeatSage.DownloadTimeoutMinutes) * time.Minute,
	}
	for _, opt := range opts {
		opt(machine)
	}
	return machine
}

// Generate runs the full interaction sequence for audioPath. Best-effort
// personalization failures are logged and skipped over; upload and
// everything from trigger onward are item-fatal. A panic anywhere in the
// sequence is contained to the item.
func (m *Machine) Generate(ctx context.Context, audioPath string) (result ItemResult) {
	result = ItemResult{AudioPath: audioPath}
	item := filepath.Base(audioPath)
	ctx = services.WithItem(services.WithStage(ctx, "generation"), item)
	logger := logging.WithContext(ctx, m.logger)

	defer func() {
		if r := recover(); r != nil {
			result.Outcome = OutcomeFailed
			result.Err = services.Wrap(services.ErrTransient, "generation", "panic", fmt.Sprint(r), nil)
			logger.Error("generation panicked", logging.Any("panic", r))
		}
	}()

	if err := m.step(ctx, func(stepCtx context.Context) error {
		return m.driver.Navigate(stepCtx, m.cfg.BeatSage.URL)
	}); err != nil {
		result.Outcome = OutcomeFailed
		result.Err = services.Wrap(services.ErrExternalTool, "generation", "navigate", "", err)
		logger.Error("could not load service page", logging.Error(err))
		return result
	}

	selectors := m.cfg.BeatSage.Selectors
	if err := m.step(ctx, func(stepCtx context.Context) error {
		return m.driver.Upload(stepCtx, selectors.FileInput, audioPath)
	}); err != nil {
		// Without an uploaded source there is nothing to generate.
		result.Outcome = OutcomeFailed
		result.Err = services.Wrap(services.ErrExternalTool, "generation", "upload", "", err)
		logger.Error("could not upload audio file", logging.Error(err))
		return result
	}

	// Personalization steps are best-effort: generation still works with
	// the page defaults, so each failure downgrades to a warning.
	m.bestEffort(ctx, logger, "fill artist", func(stepCtx context.Context) error {
		return m.driver.Fill(stepCtx, selectors.ArtistInput, m.cfg.BeatSage.ArtistName)
	})
	m.bestEffort(ctx, logger, "select difficulty", func(stepCtx context.Context) error {
		return m.driver.ClickText(stepCtx, selectors.DifficultyItem, m.cfg.BeatSage.DifficultyLabel)
	})
	m.bestEffort(ctx, logger, "expand advanced options", func(stepCtx context.Context) error {
		return m.driver.Click(stepCtx, selectors.AdvancedToggle)
	})
	m.bestEffort(ctx, logger, "select model", func(stepCtx context.Context) error {
		return m.driver.SelectOption(stepCtx, modelSelectSelector(m.cfg.BeatSage.ModelValue), m.cfg.BeatSage.ModelValue)
	})

	// The listener must be armed before the drag: generation can finish
	// arbitrarily fast and the download event must not be missed.
	downloads, err := m.driver.ArmDownload()
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = services.Wrap(services.ErrExternalTool, "generation", "arm download", "", err)
		logger.Error("could not arm download listener", logging.Error(err))
		return result
	}

	if err := m.step(ctx, func(stepCtx context.Context) error {
		return m.driver.DragSlider(stepCtx, selectors.Slider, 0.2, 0.8, 30)
	}); err != nil {
		result.Outcome = OutcomeFailed
		result.Err = services.Wrap(services.ErrExternalTool, "generation", "trigger generation", "", err)
		logger.Error("could not trigger generation", logging.Error(err))
		return result
	}

	logger.Info("generation triggered, waiting for download",
		logging.Duration("timeout", m.downloadTimeout))

	var download browser.Download
	select {
	case download = <-downloads:
	case <-time.After(m.downloadTimeout):
		result.Outcome = OutcomeTimedOut
		result.Err = services.Wrap(services.ErrTimeout, "generation", "await download", "no download within budget", nil)
		logger.Warn("no download within budget",
			logging.String(logging.FieldEventType, logging.EventDownloadTimeout),
			logging.Duration("timeout", m.downloadTimeout))
		return result
	case <-ctx.Done():
		result.Outcome = OutcomeFailed
		result.Err = ctx.Err()
		return result
	}

	saved, err := m.driver.SaveDownload(ctx, download, m.cfg.Paths.MapsDir)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = services.Wrap(services.ErrExternalTool, "generation", "save download", "", err)
		logger.Error("could not save download", logging.Error(err))
		return result
	}

	result.Outcome = OutcomeSucceeded
	result.SavedArchive = saved
	logger.Info("saved generated map", logging.String("archive", saved))
	return result
}

// step runs fn bounded by the per-step timeout.
func (m *Machine) step(ctx context.Context, fn func(context.Context) error) error {
	stepCtx, cancel := context.WithTimeout(ctx, m.stepTimeout)
	defer cancel()
	return fn(stepCtx)
}

func (m *Machine) bestEffort(ctx context.Context, logger *slog.Logger, operation string, fn func(context.Context) error) {
	if err := m.step(ctx, fn); err != nil {
		logger.Warn("could not "+operation, logging.Error(err))
	}
}

// modelSelectSelector targets the dropdown that offers the configured model,
// mirroring how the page identifies it: by the option it contains.
func modelSelectSelector(modelValue string) string {
	return fmt.Sprintf("select:has(option[value='%s'])", modelValue)
}
