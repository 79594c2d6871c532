package ytdlp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Entry is one playlist item as reported by yt-dlp.
type Entry struct {
	ID    string
	Title string
}

// SyncResult summarizes one playlist sync.
type SyncResult struct {
	Fetched []Entry
	Skipped []Entry
	Failed  []Entry
}

// Downloader defines the behaviour required by the download stage.
type Downloader interface {
	Sync(ctx context.Context, playlistURL, songsDir string) (SyncResult, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary       string
	audioFormat  string
	fetchTimeout time.Duration
	exec         Executor
}

// New constructs a yt-dlp client.
func New(binary, audioFormat string, fetchTimeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	audioFormat = strings.TrimSpace(audioFormat)
	if audioFormat == "" {
		audioFormat = "m4a"
	}
	client := &Client{
		binary:       binary,
		audioFormat:  audioFormat,
		fetchTimeout: time.Duration(fetchTimeoutSeconds) * time.Second,
		exec:         commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// List enumerates the playlist without downloading anything.
func (c *Client) List(ctx context.Context, playlistURL string) ([]Entry, error) {
	playlistURL = strings.TrimSpace(playlistURL)
	if playlistURL == "" {
		return nil, errors.New("playlist url required")
	}

	args := []string{
		"--flat-playlist",
		"--print", "%(id)s\t%(title)s",
		playlistURL,
	}

	var entries []Entry
	if err := c.exec.Run(ctx, c.binary, args, func(line string) {
		id, title, ok := strings.Cut(strings.TrimSpace(line), "\t")
		if !ok || id == "" {
			return
		}
		entries = append(entries, Entry{ID: id, Title: strings.TrimSpace(title)})
	}); err != nil {
		return nil, fmt.Errorf("yt-dlp list playlist: %w", err)
	}
	return entries, nil
}

// Fetch downloads one entry's audio track into destDir. The output file
// is named after the video title; the extension follows the configured
// audio format.
func (c *Client) Fetch(ctx context.Context, entry Entry, destDir string) error {
	if destDir == "" {
		return errors.New("destination directory required")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	fetchCtx := ctx
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}

	args := []string{
		"-x",
		"--audio-format", c.audioFormat,
		"--no-playlist",
		"-o", filepath.Join(destDir, "%(title)s.%(ext)s"),
		"--", entry.ID,
	}
	if err := c.exec.Run(fetchCtx, c.binary, args, nil); err != nil {
		return fmt.Errorf("yt-dlp fetch %s: %w", entry.ID, err)
	}
	return nil
}

// Sync lists the playlist and fetches every entry whose audio is not
// already present in songsDir. Fetch failures are collected, not fatal;
// the listing itself failing is.
func (c *Client) Sync(ctx context.Context, playlistURL, songsDir string) (SyncResult, error) {
	var result SyncResult

	entries, err := c.List(ctx, playlistURL)
	if err != nil {
		return result, err
	}

	present, err := titlesPresent(songsDir)
	if err != nil {
		return result, err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, ok := present[strings.ToLower(entry.Title)]; ok {
			result.Skipped = append(result.Skipped, entry)
			continue
		}
		if err := c.Fetch(ctx, entry, songsDir); err != nil {
			result.Failed = append(result.Failed, entry)
			continue
		}
		result.Fetched = append(result.Fetched, entry)
	}
	return result, nil
}

// titlesPresent indexes the audio files already in dir by their stem,
// lowercased for case-insensitive comparison against playlist titles.
func titlesPresent(dir string) (map[string]struct{}, error) {
	present := map[string]struct{}{}
	items, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return present, nil
		}
		return nil, fmt.Errorf("read songs directory: %w", err)
	}
	for _, item := range items {
		if item.IsDir() {
			continue
		}
		name := item.Name()
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		present[strings.ToLower(stem)] = struct{}{}
	}
	return present, nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	// Only stdout carries machine-readable output; diagnostics on stderr
	// must never reach the caller's line parser.
	forwardStdout := func(line string) {
		if onStdout != nil {
			onStdout(line)
			return
		}
		fmt.Fprintln(os.Stderr, line)
	}
	forwardStderr := func(line string) {
		fmt.Fprintln(os.Stderr, line)
	}

	wg.Add(2)
	go scan(stdout, forwardStdout)
	go scan(stderr, forwardStderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
