package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBeatSage(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validatePostprocess(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.SongsDir == "" {
		return errors.New("paths.songs_dir must be set")
	}
	if c.Paths.MapsDir == "" {
		return errors.New("paths.maps_dir must be set")
	}
	if c.Paths.SongsDir == c.Paths.MapsDir {
		return errors.New("paths.songs_dir and paths.maps_dir must differ")
	}
	return nil
}

func (c *Config) validateBeatSage() error {
	if c.BeatSage.URL == "" {
		return errors.New("beatsage.url must be set")
	}
	parsed, err := url.Parse(c.BeatSage.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("beatsage.url %q is not an absolute URL", c.BeatSage.URL)
	}
	if strings.TrimSpace(c.BeatSage.ModelValue) == "" {
		return errors.New("beatsage.model_value must be set")
	}
	return nil
}

func (c *Config) validateDownload() error {
	if !c.Download.Enabled {
		return nil
	}
	if c.Download.PlaylistURL == "" {
		return errors.New("download.playlist_url must be set when download.enabled is true")
	}
	return nil
}

func (c *Config) validatePostprocess() error {
	if strings.TrimSpace(c.Postprocess.AuthorName) == "" {
		return errors.New("postprocess.author_name must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
