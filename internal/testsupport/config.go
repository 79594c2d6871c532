package testsupport

import (
	"path/filepath"
	"testing"

	"cartographer/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SongsDir = filepath.Join(base, "songs")
	cfg.Paths.MapsDir = filepath.Join(base, "maps")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithAuthorName overrides the sanitizer author name on the test config.
func WithAuthorName(name string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Postprocess.AuthorName = name
	}
}

// WithDownloadPlaylist enables the download stage against the given URL.
func WithDownloadPlaylist(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Download.Enabled = true
		cfg.Download.PlaylistURL = url
	}
}
