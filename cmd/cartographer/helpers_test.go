package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliEnv struct {
	configPath string
	songsDir   string
	mapsDir    string
	logDir     string
}

func setupCLITestEnv(t *testing.T) cliEnv {
	t.Helper()

	base := t.TempDir()
	env := cliEnv{
		configPath: filepath.Join(base, "config.toml"),
		songsDir:   filepath.Join(base, "songs"),
		mapsDir:    filepath.Join(base, "maps"),
		logDir:     filepath.Join(base, "logs"),
	}
	body := fmt.Sprintf(`[paths]
songs_dir = %q
maps_dir = %q
log_dir = %q
`, env.songsDir, env.mapsDir, env.logDir)
	if err := os.WriteFile(env.configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, error) {
	t.Helper()

	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}
