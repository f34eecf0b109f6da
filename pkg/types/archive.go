// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ArchiveKind identifies the container format of a comic archive. It is
// resolved once from the file extension and never re-derived.
type ArchiveKind string

const (
	KindZip         ArchiveKind = "cbz"
	KindRar         ArchiveKind = "cbr"
	KindUnsupported ArchiveKind = "unsupported"
)

// ConversionStatus is the outcome of converting one archive.
type ConversionStatus string

const (
	// ConversionDone means a PDF was written.
	ConversionDone ConversionStatus = "converted"
	// ConversionEmpty means the archive held no supported images and no PDF
	// was written. It is not a failure.
	ConversionEmpty ConversionStatus = "empty"
	// ConversionFailed means the archive was abandoned; no PDF was written.
	ConversionFailed ConversionStatus = "failed"
)

// Stage names a step of a single archive conversion. Conversions move
// start → extracting → collecting → assembling → done; a fatal failure in
// any stage jumps straight to done after the extraction directory is removed.
type Stage string

const (
	StageStart      Stage = "start"
	StageExtracting Stage = "extracting"
	StageCollecting Stage = "collecting"
	StageAssembling Stage = "assembling"
	StageDone       Stage = "done"
)

// ArchiveResult records what happened to one archive.
type ArchiveResult struct {
	// Archive is the input archive path.
	Archive string `json:"archive" yaml:"archive"`

	// Output is the PDF path that was (or would have been) written.
	Output string `json:"output" yaml:"output"`

	Kind   ArchiveKind      `json:"kind" yaml:"kind"`
	Status ConversionStatus `json:"status" yaml:"status"`

	// Stage is the last stage entered. For failures it is the stage that failed.
	Stage Stage `json:"stage" yaml:"stage"`

	// Pages is the number of pages written (0 unless Status is converted).
	Pages int `json:"pages" yaml:"pages"`

	// Error is the failure message, empty unless Status is failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	Duration time.Duration `json:"duration" yaml:"duration"`

	// Err keeps the original error for errors.Is / errors.As checks.
	Err error `json:"-" yaml:"-"`
}

// Failed reports whether the archive was abandoned.
func (r ArchiveResult) Failed() bool {
	return r.Status == ConversionFailed
}
