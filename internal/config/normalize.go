package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBeatSage()
	c.normalizeDownload()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SongsDir, err = expandPath(c.Paths.SongsDir); err != nil {
		return fmt.Errorf("paths.songs_dir: %w", err)
	}
	if c.Paths.MapsDir, err = expandPath(c.Paths.MapsDir); err != nil {
		return fmt.Errorf("paths.maps_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBeatSage() {
	c.BeatSage.URL = strings.TrimSpace(c.BeatSage.URL)
	if c.BeatSage.StepTimeoutSeconds <= 0 {
		c.BeatSage.StepTimeoutSeconds = defaultStepTimeoutSeconds
	}
	if c.BeatSage.DownloadTimeoutMinutes <= 0 {
		c.BeatSage.DownloadTimeoutMinutes = defaultDownloadTimeoutMinutes
	}
	sel := &c.BeatSage.Selectors
	if strings.TrimSpace(sel.FileInput) == "" {
		sel.FileInput = defaultFileInputSelector
	}
	if strings.TrimSpace(sel.ArtistInput) == "" {
		sel.ArtistInput = defaultArtistInputSelector
	}
	if strings.TrimSpace(sel.DifficultyItem) == "" {
		sel.DifficultyItem = defaultDifficultyItemSelector
	}
	if strings.TrimSpace(sel.AdvancedToggle) == "" {
		sel.AdvancedToggle = defaultAdvancedToggleSelector
	}
	if strings.TrimSpace(sel.Slider) == "" {
		sel.Slider = defaultSliderSelector
	}
}

func (c *Config) normalizeDownload() {
	c.Download.PlaylistURL = strings.TrimSpace(c.Download.PlaylistURL)
	if strings.TrimSpace(c.Download.AudioFormat) == "" {
		c.Download.AudioFormat = defaultAudioFormat
	}
	if strings.TrimSpace(c.Download.Binary) == "" {
		c.Download.Binary = defaultDownloadBinary
	}
	if c.Download.FetchTimeoutSeconds <= 0 {
		c.Download.FetchTimeoutSeconds = defaultFetchTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
}
