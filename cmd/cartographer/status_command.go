package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var showItems bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show outcomes for a pipeline run",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			target := strings.TrimSpace(runID)
			if target == "" {
				latest, err := store.LatestRunID(cmd.Context())
				if err != nil {
					return err
				}
				if latest == "" {
					fmt.Fprintln(out, "No runs recorded yet")
					return nil
				}
				target = latest
			}

			summary, err := store.Summarize(cmd.Context(), target)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Run %s\n", target)
			fmt.Fprintln(out, renderTable(
				[]string{"Total", "Pending", "Succeeded", "Skipped", "Failed", "Timed out"},
				[][]string{{
					strconv.Itoa(summary.Total),
					strconv.Itoa(summary.Pending),
					strconv.Itoa(summary.Succeeded),
					strconv.Itoa(summary.Skipped),
					strconv.Itoa(summary.Failed),
					strconv.Itoa(summary.TimedOut),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
			))

			if !showItems {
				return nil
			}
			items, err := store.ListRun(cmd.Context(), target)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					filepath.Base(item.SourcePath),
					item.CanonicalKey,
					string(item.Status),
					item.ErrorMessage,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Source", "Canonical", "Status", "Error"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run identifier (defaults to the most recent run)")
	cmd.Flags().BoolVar(&showItems, "items", false, "List every item in the run")
	return cmd
}
