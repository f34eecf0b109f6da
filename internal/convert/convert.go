// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns comic-book archives into PDF documents, one archive
// at a time or a whole directory per batch. Each archive is unpacked into
// its own temporary directory, which is removed however the conversion ends.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/comicpdf/internal/archive"
	"github.com/pdiddy/comicpdf/internal/images"
	"github.com/pdiddy/comicpdf/internal/natsort"
	"github.com/pdiddy/comicpdf/internal/pdf"
	"github.com/pdiddy/comicpdf/pkg/types"
)

// DefaultCreator is recorded as the PDF creator.
const DefaultCreator = "comicpdf"

// Extractor unpacks an archive into an existing directory.
// *archive.Extractor implements it.
type Extractor interface {
	Extract(ctx context.Context, path, dest string) error
}

// Converter runs archive conversions.
type Converter struct {
	Extractor Extractor

	// Images controls image collection. Its Logger is replaced per archive.
	Images images.Options

	// TempDir is the parent of per-archive extraction directories.
	// Empty means os.TempDir().
	TempDir string

	// Creator is written into each PDF's metadata.
	Creator string

	Logger zerolog.Logger

	// OnArchive, when set, is called after each archive finishes.
	OnArchive func(types.ArchiveResult)
}

// New returns a Converter configured from cfg.
func New(ext Extractor, cfg types.ConversionConfig, log zerolog.Logger) *Converter {
	return &Converter{
		Extractor: ext,
		Images:    images.Options{SkipUndecodable: cfg.SkipBadImages},
		TempDir:   cfg.TempDir,
		Creator:   DefaultCreator,
		Logger:    log,
	}
}

// ConvertArchive converts the archive at archivePath into a PDF at outPath,
// printing one status line to w. Failures are reported in the result, never
// returned: a caller converting many archives moves on to the next one.
//
// An archive with no images removes any PDF an earlier run left at outPath.
// A failed archive leaves an existing PDF untouched.
func (c *Converter) ConvertArchive(ctx context.Context, archivePath, outPath string, w io.Writer) types.ArchiveResult {
	start := time.Now()
	res := types.ArchiveResult{
		Archive: archivePath,
		Output:  outPath,
		Kind:    archive.Classify(archivePath),
		Stage:   types.StageStart,
	}
	log := c.Logger.With().Str("archive", filepath.Base(archivePath)).Logger()

	err := c.convert(ctx, &res, &log)
	switch {
	case err == nil:
		res.Status = types.ConversionDone
	case errors.Is(err, pdf.ErrNoImages):
		res.Status = types.ConversionEmpty
		res.Stage = types.StageDone
		if err := os.Remove(outPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("output", outPath).Msg("removing stale output")
		}
	default:
		res.Status = types.ConversionFailed
		res.Error = err.Error()
		res.Err = err
	}
	res.Duration = time.Since(start)

	printStatus(w, res)
	log.Debug().
		Str("status", string(res.Status)).
		Str("stage", string(res.Stage)).
		Int("pages", res.Pages).
		Dur("duration", res.Duration).
		Msg("archive finished")

	if c.OnArchive != nil {
		c.OnArchive(res)
	}
	return res
}

// convert moves res through the conversion stages. The stage recorded in
// res when an error is returned is the one that failed.
func (c *Converter) convert(ctx context.Context, res *types.ArchiveResult, log *zerolog.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var createdAt time.Time
	if fi, err := os.Stat(res.Archive); err == nil {
		createdAt = fi.ModTime()
	}

	res.Stage = types.StageExtracting
	dir, err := os.MkdirTemp(c.TempDir, "comicpdf-*")
	if err != nil {
		return fmt.Errorf("creating extraction directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("removing extraction directory")
		}
	}()
	log.Debug().Str("dir", dir).Msg("extracting")
	if err := c.Extractor.Extract(ctx, res.Archive, dir); err != nil {
		return err
	}

	res.Stage = types.StageCollecting
	opts := c.Images
	opts.Logger = log
	entries, err := images.Collect(dir, opts)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return pdf.ErrNoImages
	}
	log.Debug().Int("images", len(entries)).Msg("collected images")

	res.Stage = types.StageAssembling
	n, err := pdf.Write(entries, res.Output, pdf.WriteOptions{
		Title:     baseName(res.Archive),
		Creator:   c.Creator,
		CreatedAt: createdAt,
	})
	if err != nil {
		return err
	}
	res.Pages = n
	res.Stage = types.StageDone
	return nil
}

// ConvertBatch converts every .cbz and .cbr file directly inside inputDir
// into outputDir, which is created if missing. Archives are processed in
// natural filename order and a failing archive never stops the batch.
// An error is returned only when the batch cannot start or ctx is
// cancelled; the result then holds the archives finished so far.
func (c *Converter) ConvertBatch(ctx context.Context, inputDir, outputDir string, w io.Writer) (types.BatchResult, error) {
	result := types.BatchResult{
		RunID:     uuid.NewString(),
		InputDir:  inputDir,
		OutputDir: outputDir,
		StartedAt: time.Now().UTC(),
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return result, fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}
	archives, err := ListArchives(inputDir)
	if err != nil {
		return result, err
	}
	c.Logger.Debug().Str("run_id", result.RunID).Int("archives", len(archives)).Msg("batch started")

	for _, path := range archives {
		if err := ctx.Err(); err != nil {
			result.FinishedAt = time.Now().UTC()
			return result, fmt.Errorf("batch interrupted after %d of %d archives: %w", result.Total(), len(archives), err)
		}
		res := c.ConvertArchive(ctx, path, OutputPath(outputDir, path), w)
		result.Archives = append(result.Archives, res)
	}
	result.FinishedAt = time.Now().UTC()

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d empty, %d failed (total: %d)\n",
		result.Converted(), result.Empty(), result.Failed(), result.Total())
	return result, nil
}

// ListArchives returns the paths of the .cbz and .cbr files directly inside
// dir, in natural filename order. Subdirectories are not searched.
func ListArchives(dir string) ([]string, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory %s: %w", dir, err)
	}
	var names []string
	for _, de := range des {
		if de.IsDir() || !archive.IsArchive(de.Name()) {
			continue
		}
		names = append(names, de.Name())
	}
	natsort.Sort(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

// OutputPath returns outputDir/<archive basename>.pdf.
func OutputPath(outputDir, archivePath string) string {
	return filepath.Join(outputDir, baseName(archivePath)+".pdf")
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func printStatus(w io.Writer, res types.ArchiveResult) {
	name := filepath.Base(res.Archive)
	switch res.Status {
	case types.ConversionDone:
		fmt.Fprintf(w, "converted: %s (%d pages)\n", name, res.Pages)
	case types.ConversionEmpty:
		fmt.Fprintf(w, "empty:     %s (no images found)\n", name)
	default:
		fmt.Fprintf(w, "failed:    %s (%v)\n", name, res.Err)
	}
}
