// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pdiddy/comicpdf/internal/convert"
	"github.com/pdiddy/comicpdf/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <archive>...",
	Short: "Convert comic archives to PDF",
	Long: `Convert turns each named .cbz or .cbr archive into a PDF with one page
per image. The PDF is written next to its archive unless --output-dir is
given; an existing PDF of the same name is overwritten.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("output-dir", "o", "", "directory for the PDFs (default: alongside each archive)")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	outputDir, _ := cmd.Flags().GetString("output-dir")
	if outputDir != "" {
		abs, err := absPath(outputDir)
		if err != nil {
			return err
		}
		outputDir = abs
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", outputDir, err)
		}
	}

	log := newLogger(cmd)
	c := newConverter(conversionConfig(), log)
	ctx := cmd.Context()

	result := types.BatchResult{
		RunID:     uuid.NewString(),
		OutputDir: outputDir,
		StartedAt: time.Now().UTC(),
	}
	for _, arg := range args {
		if err := ctx.Err(); err != nil {
			break
		}
		path, err := absPath(arg)
		if err != nil {
			return err
		}
		dir := outputDir
		if dir == "" {
			dir = filepath.Dir(path)
		}
		res := c.ConvertArchive(ctx, path, convert.OutputPath(dir, path), cmd.OutOrStdout())
		result.Archives = append(result.Archives, res)
	}
	result.FinishedAt = time.Now().UTC()

	recordHistory(ctx, historyConfig(), log, result)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("conversion interrupted: %w", err)
	}

	if len(args) > 1 {
		printOutcome(cmd.OutOrStdout(), result)
	}
	if result.HasFailures() {
		return fmt.Errorf("%d archive(s) failed conversion", result.Failed())
	}
	return nil
}

func absPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", p, err)
	}
	return abs, nil
}
