package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	SongsDir string `toml:"songs_dir"`
	MapsDir  string `toml:"maps_dir"`
	LogDir   string `toml:"log_dir"`
}

// Selectors identifies the Beat Sage UI controls. The defaults track the
// current page markup; they are configuration, not contract, so a markup
// change is fixable without a new binary.
type Selectors struct {
	FileInput      string `toml:"file_input"`
	ArtistInput    string `toml:"artist_input"`
	DifficultyItem string `toml:"difficulty_item"`
	AdvancedToggle string `toml:"advanced_toggle"`
	Slider         string `toml:"slider"`
}

// BeatSage contains configuration for the remote generation service.
type BeatSage struct {
	URL                    string    `toml:"url"`
	Headless               bool      `toml:"headless"`
	ArtistName             string    `toml:"artist_name"`
	DifficultyLabel        string    `toml:"difficulty_label"`
	ModelValue             string    `toml:"model_value"`
	StepTimeoutSeconds     int       `toml:"step_timeout_seconds"`
	DownloadTimeoutMinutes int       `toml:"download_timeout_minutes"`
	Selectors              Selectors `toml:"selectors"`
}

// Download contains configuration for the playlist acquisition stage.
type Download struct {
	Enabled             bool   `toml:"enabled"`
	PlaylistURL         string `toml:"playlist_url"`
	AudioFormat         string `toml:"audio_format"`
	Binary              string `toml:"binary"`
	FetchTimeoutSeconds int    `toml:"fetch_timeout_seconds"`
}

// Postprocess contains configuration for artifact normalization.
type Postprocess struct {
	AuthorName string `toml:"author_name"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Cartographer.
//
// Configuration sections by subsystem:
//   - Paths: songs, maps, and log directories
//   - BeatSage: remote service URL, UI personalization, timeouts, selectors
//   - Download: optional yt-dlp playlist acquisition
//   - Postprocess: author name stamped into sanitized metadata
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	BeatSage    BeatSage    `toml:"beatsage"`
	Download    Download    `toml:"download"`
	Postprocess Postprocess `toml:"postprocess"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/cartographer/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The bool reports
// whether a file was actually found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cartographer.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run needs. A missing songs
// directory is pipeline-fatal later, not here, so the download stage can be
// pointed at a directory it will create.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.SongsDir, c.Paths.MapsDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// Sample returns the embedded sample configuration text.
func Sample() string {
	return sampleConfig
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
