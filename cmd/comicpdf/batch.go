// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/comicpdf/internal/convert"
)

var batchCmd = &cobra.Command{
	Use:   "batch [input-dir] [output-dir]",
	Short: "Convert every archive in a directory",
	Long: `Batch converts each .cbz and .cbr file directly inside input-dir into
output-dir/<name>.pdf. The output directory is created if missing and
existing PDFs are overwritten. A failing archive is reported and skipped;
the command exits non-zero if any archive failed.

The directories default to input_dir and output_dir from the config file.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().String("report", "", "write a report of the run to this .yaml or .json file")
	batchCmd.Flags().Bool("progress", false, "show a progress bar instead of per-archive status lines")
	bindFlags(batchCmd, map[string]string{keyReport: "report"})

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := batchConfig(args)
	if cfg.InputDir == "" || cfg.OutputDir == "" {
		return errors.New("provide an input and an output directory (arguments, or input_dir and output_dir in the config file)")
	}
	inputDir, err := absPath(cfg.InputDir)
	if err != nil {
		return err
	}
	outputDir, err := absPath(cfg.OutputDir)
	if err != nil {
		return err
	}

	log := newLogger(cmd)
	c := newConverter(cfg.ConversionConfig, log)
	ctx := cmd.Context()

	status := cmd.OutOrStdout()
	showProgress, _ := cmd.Flags().GetBool("progress")
	if showProgress {
		archives, err := convert.ListArchives(inputDir)
		if err != nil {
			return err
		}
		c.OnArchive = progressHook(newProgressBar(len(archives), cmd.ErrOrStderr()))
		status = io.Discard
	}

	result, err := c.ConvertBatch(ctx, inputDir, outputDir, status)
	if result.Total() > 0 {
		recordHistory(ctx, historyConfig(), log, result)
	}
	if err != nil {
		return err
	}

	if cfg.ReportPath != "" {
		if err := convert.WriteReport(result, cfg.ReportPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", cfg.ReportPath)
	}

	printOutcome(cmd.OutOrStdout(), result)
	if result.HasFailures() {
		return fmt.Errorf("%d archive(s) failed conversion", result.Failed())
	}
	return nil
}
