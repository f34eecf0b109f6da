// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/comicpdf/internal/history"
	"github.com/pdiddy/comicpdf/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded conversion runs",
	Long: `History lists past convert and batch runs from the history database,
newest first. Use "history show <run-id>" for the archives of one run and
"history archive <path>" for every recorded outcome of one archive.`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the archives converted in one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyArchiveCmd = &cobra.Command{
	Use:   "archive <path>",
	Short: "Show every recorded outcome for one archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryArchive,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list (0 for all)")

	historyCmd.AddCommand(historyShowCmd, historyArchiveCmd)
	rootCmd.AddCommand(historyCmd)
}

// recordHistory stores result unless history is disabled. A history
// failure is logged and never fails the conversion.
func recordHistory(ctx context.Context, cfg types.HistoryConfig, log zerolog.Logger, result types.BatchResult) {
	if cfg.Disabled {
		return
	}
	store, err := history.Open(cfg.Path)
	if err != nil {
		log.Warn().Err(err).Msg("conversion history unavailable")
		return
	}
	defer store.Close()

	// Record even when ctx was cancelled mid-run.
	if err := store.Record(context.WithoutCancel(ctx), result); err != nil {
		log.Warn().Err(err).Str("run_id", result.RunID).Msg("recording conversion history")
	}
}

func openHistory() (*history.Store, error) {
	return history.Open(historyConfig().Path)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No conversions recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tCONVERTED\tEMPTY\tFAILED\tINPUT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Converted, r.Empty, r.Failed, r.InputDir)
	}
	return tw.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	run, err := store.Run(ctx, args[0])
	if err != nil {
		return err
	}
	archives, err := store.Archives(ctx, run.ID)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s\n", run.ID)
	fmt.Fprintf(w, "  started:  %s\n", run.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "  finished: %s\n", run.FinishedAt.Local().Format(time.DateTime))
	if run.InputDir != "" {
		fmt.Fprintf(w, "  input:    %s\n", run.InputDir)
	}
	if run.OutputDir != "" {
		fmt.Fprintf(w, "  output:   %s\n", run.OutputDir)
	}
	fmt.Fprintf(w, "  summary:  %d converted, %d empty, %d failed (total: %d)\n\n",
		run.Converted, run.Empty, run.Failed, run.Total())
	return printArchives(w, archives, false)
}

func runHistoryArchive(cmd *cobra.Command, args []string) error {
	path, err := absPath(args[0])
	if err != nil {
		return err
	}
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	archives, err := store.ArchiveHistory(cmd.Context(), path)
	if err != nil {
		return err
	}
	if len(archives) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No conversions recorded for %s.\n", path)
		return nil
	}
	return printArchives(cmd.OutOrStdout(), archives, true)
}

func printArchives(w io.Writer, archives []types.ArchiveResult, fullPath bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ARCHIVE\tSTATUS\tSTAGE\tPAGES\tDURATION\tERROR")
	for _, a := range archives {
		name := a.Archive
		if !fullPath {
			name = filepath.Base(name)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			name, a.Status, a.Stage, a.Pages, a.Duration.Round(time.Millisecond), a.Error)
	}
	return tw.Flush()
}
