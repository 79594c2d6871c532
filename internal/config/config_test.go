package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cartographer/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cartographer.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsForMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatalf("expected exists=false for %s", resolved)
	}
	if cfg.BeatSage.URL != "https://beatsage.com" {
		t.Fatalf("unexpected default url %q", cfg.BeatSage.URL)
	}
	if cfg.BeatSage.StepTimeoutSeconds != 10 || cfg.BeatSage.DownloadTimeoutMinutes != 10 {
		t.Fatalf("unexpected default timeouts: %+v", cfg.BeatSage)
	}
	if !cfg.BeatSage.Headless {
		t.Fatal("expected headless default true")
	}
	if cfg.BeatSage.Selectors.FileInput == "" || cfg.BeatSage.Selectors.Slider == "" {
		t.Fatalf("selector defaults missing: %+v", cfg.BeatSage.Selectors)
	}
	if !filepath.IsAbs(cfg.Paths.MapsDir) {
		t.Fatalf("maps dir not normalized: %q", cfg.Paths.MapsDir)
	}
}

func TestLoadOverridesAndNormalizes(t *testing.T) {
	path := writeConfig(t, `
[paths]
songs_dir = "~/songs"
maps_dir = "~/maps"

[beatsage]
artist_name = "DJ Test"
step_timeout_seconds = 3

[postprocess]
author_name = "someone"
`)
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if strings.HasPrefix(cfg.Paths.SongsDir, "~") {
		t.Fatalf("tilde not expanded: %q", cfg.Paths.SongsDir)
	}
	if cfg.BeatSage.ArtistName != "DJ Test" {
		t.Fatalf("override lost: %q", cfg.BeatSage.ArtistName)
	}
	if cfg.BeatSage.StepTimeoutSeconds != 3 {
		t.Fatalf("override lost: %d", cfg.BeatSage.StepTimeoutSeconds)
	}
	if cfg.Postprocess.AuthorName != "someone" {
		t.Fatalf("override lost: %q", cfg.Postprocess.AuthorName)
	}
	// Unset sections keep defaults.
	if cfg.Download.AudioFormat != "m4a" {
		t.Fatalf("download defaults lost: %+v", cfg.Download)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "relative url",
			body: "[beatsage]\nurl = \"beatsage.com\"\n",
			want: "beatsage.url",
		},
		{
			name: "blank author",
			body: "[postprocess]\nauthor_name = \"  \"\n",
			want: "postprocess.author_name",
		},
		{
			name: "unknown log format",
			body: "[logging]\nformat = \"xml\"\n",
			want: "logging.format",
		},
		{
			name: "download enabled without playlist",
			body: "[download]\nenabled = true\n",
			want: "download.playlist_url",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.body)
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[beatsage]") {
		t.Fatal("sample missing beatsage section")
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error overwriting existing config")
	}
}

func TestEnsureDirectories(t *testing.T) {
	tmp := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SongsDir = filepath.Join(tmp, "songs")
	cfg.Paths.MapsDir = filepath.Join(tmp, "maps")
	cfg.Paths.LogDir = filepath.Join(tmp, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.SongsDir, cfg.Paths.MapsDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s, err=%v", dir, err)
		}
	}
}
