package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"log/slog"

	"github.com/spf13/cobra"

	"cartographer/internal/browser"
	"cartographer/internal/generation"
	"cartographer/internal/ledger"
	"cartographer/internal/logging"
	"cartographer/internal/normalizing"
	"cartographer/internal/services/ytdlp"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: download, generate, normalize",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			release, err := ctx.acquireRunLock()
			if err != nil {
				return err
			}
			defer release()

			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			runID := ledger.NewRunID()
			out := cmd.OutOrStdout()
			in := cmd.InOrStdin()
			fmt.Fprintf(out, "Run %s\n", runID)

			if cfg.Download.Enabled {
				if confirmStage(in, out, "Download playlist audio?", skipConfirm) {
					if err := runDownloadStage(signalCtx, ctx, out); err != nil {
						return err
					}
				}
			}
			if confirmStage(in, out, "Generate levels for local audio?", skipConfirm) {
				if err := runGenerateStage(signalCtx, ctx, logger, store, runID, out); err != nil {
					return err
				}
			}
			if confirmStage(in, out, "Normalize downloaded archives?", skipConfirm) {
				if err := runNormalizeStage(signalCtx, ctx, logger, store, runID, out); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Run all stages without confirmation prompts")
	return cmd
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Fetch playlist audio into the songs directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runDownloadStage(signalCtx, ctx, cmd.OutOrStdout())
		},
	}
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate a level archive for each local audio file",
		RunE: func(cmd *cobra.Command, args []string) error {
			release, err := ctx.acquireRunLock()
			if err != nil {
				return err
			}
			defer release()

			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runGenerateStage(signalCtx, ctx, logger, store, ledger.NewRunID(), cmd.OutOrStdout())
		},
	}
}

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Extract archives and sanitize map folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			release, err := ctx.acquireRunLock()
			if err != nil {
				return err
			}
			defer release()

			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runNormalizeStage(signalCtx, ctx, logger, store, ledger.NewRunID(), cmd.OutOrStdout())
		},
	}
}

func runDownloadStage(runCtx context.Context, ctx *commandContext, out io.Writer) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Download.PlaylistURL) == "" {
		return fmt.Errorf("download requires download.playlist_url in the configuration")
	}

	client, err := ytdlp.New(cfg.Download.Binary, cfg.Download.AudioFormat, cfg.Download.FetchTimeoutSeconds)
	if err != nil {
		return err
	}
	result, err := client.Sync(runCtx, cfg.Download.PlaylistURL, cfg.Paths.SongsDir)
	if err != nil {
		return fmt.Errorf("sync playlist: %w", err)
	}

	fmt.Fprintln(out, renderTable(
		[]string{"Stage", "Fetched", "Skipped", "Failed"},
		[][]string{{
			"download",
			strconv.Itoa(len(result.Fetched)),
			strconv.Itoa(len(result.Skipped)),
			strconv.Itoa(len(result.Failed)),
		}},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	))
	for _, entry := range result.Failed {
		fmt.Fprintln(out, paintError(out, fmt.Sprintf("failed: %s (%s)", entry.Title, entry.ID)))
	}
	return nil
}

func runGenerateStage(runCtx context.Context, ctx *commandContext, logger *slog.Logger, store *ledger.Store, runID string, out io.Writer) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	session, err := browser.NewSession(runCtx, browser.Options{Headless: cfg.BeatSage.Headless})
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer session.Close()

	machine := generation.NewMachine(cfg, session, logger)
	pipeline := generation.NewPipeline(cfg, machine, store, logger)
	counts, err := pipeline.Run(runCtx, runID)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, renderTable(
		[]string{"Stage", "Succeeded", "Skipped", "Failed", "Timed out"},
		[][]string{{
			"generate",
			strconv.Itoa(counts.Succeeded),
			strconv.Itoa(counts.Skipped),
			strconv.Itoa(counts.Failed),
			strconv.Itoa(counts.TimedOut),
		}},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
	logger.Info("generation finished",
		logging.String("run_id", runID), logging.Int("items", counts.Total()))
	return nil
}

func runNormalizeStage(runCtx context.Context, ctx *commandContext, logger *slog.Logger, store *ledger.Store, runID string, out io.Writer) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	pipeline := normalizing.NewPipeline(cfg, store, logger)
	counts, err := pipeline.Run(runCtx, runID)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, renderTable(
		[]string{"Stage", "Extracted", "Skipped", "Failed", "Sanitized", "Warnings"},
		[][]string{{
			"normalize",
			strconv.Itoa(counts.Extracted),
			strconv.Itoa(counts.Skipped),
			strconv.Itoa(counts.FailedArchives + counts.FailedFolders),
			strconv.Itoa(counts.Sanitized),
			strconv.Itoa(counts.Warnings),
		}},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
	logger.Info("normalization finished",
		logging.String("run_id", runID),
		logging.Int("maps_dir_folders", counts.Sanitized+counts.FailedFolders))
	return nil
}

func confirmStage(in io.Reader, out io.Writer, prompt string, skip bool) bool {
	if skip {
		return true
	}
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
