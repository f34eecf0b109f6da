// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive unpacks comic-book archives into a directory.
// CBZ files are read as ZIP containers; CBR files are handed to an external
// RAR-capable tool. The archive kind is decided by file extension alone.
package archive

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/comicpdf/pkg/types"
)

// ErrUnsupportedFormat is returned for paths that are neither .cbz nor .cbr.
// It indicates caller misuse, not a damaged archive.
var ErrUnsupportedFormat = errors.New("unsupported archive format")

// ExtractionError reports a CBZ or CBR archive that could not be unpacked:
// a corrupt ZIP, an unsupported compression method, a missing RAR tool, or
// a RAR tool that exited non-zero.
type ExtractionError struct {
	Archive string
	Kind    types.ArchiveKind
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %v", filepath.Base(e.Archive), e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Classify returns the archive kind for path based on its lowercased extension.
func Classify(path string) types.ArchiveKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cbz":
		return types.KindZip
	case ".cbr":
		return types.KindRar
	default:
		return types.KindUnsupported
	}
}

// IsArchive reports whether path names a supported comic archive.
func IsArchive(path string) bool {
	return Classify(path) != types.KindUnsupported
}

// Extractor unpacks archives. The zero value handles CBZ files; CBR files
// additionally need Rar.
type Extractor struct {
	// Rar unpacks CBR archives. When nil, every CBR extraction fails with
	// an ExtractionError.
	Rar RarTool
}

// NewExtractor returns an Extractor that uses rar for CBR archives.
func NewExtractor(rar RarTool) *Extractor {
	return &Extractor{Rar: rar}
}

// Extract unpacks the archive at path into dest, which must exist. The
// archive's internal directory structure is reproduced under dest.
func (e *Extractor) Extract(ctx context.Context, path, dest string) error {
	kind := Classify(path)
	switch kind {
	case types.KindZip:
		if err := extractZip(path, dest); err != nil {
			return &ExtractionError{Archive: path, Kind: kind, Err: err}
		}
		return nil
	case types.KindRar:
		if e.Rar == nil {
			return &ExtractionError{Archive: path, Kind: kind, Err: errors.New("no RAR extraction tool available (install unar or 7z)")}
		}
		if err := e.Rar.Extract(ctx, path, dest); err != nil {
			return &ExtractionError{Archive: path, Kind: kind, Err: err}
		}
		return nil
	case types.KindUnsupported:
		return fmt.Errorf("%w: %q (only .cbz and .cbr are supported)", ErrUnsupportedFormat, filepath.Ext(path))
	default:
		panic(fmt.Sprintf("archive: unhandled kind %q", kind))
	}
}
