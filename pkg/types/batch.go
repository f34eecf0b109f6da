// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// BatchResult holds the outcome of one conversion run: every archive that
// was attempted, in the order it was attempted.
type BatchResult struct {
	// RunID uniquely identifies the run (a UUID).
	RunID string `json:"run_id" yaml:"run_id"`

	InputDir  string `json:"input_dir" yaml:"input_dir"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	Archives []ArchiveResult `json:"archives" yaml:"archives"`
}

// Converted returns the number of archives that produced a PDF.
func (r BatchResult) Converted() int {
	return r.count(ConversionDone)
}

// Empty returns the number of archives that held no supported images.
func (r BatchResult) Empty() int {
	return r.count(ConversionEmpty)
}

// Failed returns the number of archives that were abandoned.
func (r BatchResult) Failed() int {
	return r.count(ConversionFailed)
}

// Total returns the number of archives attempted.
func (r BatchResult) Total() int {
	return len(r.Archives)
}

// HasFailures reports whether any archive failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed() > 0
}

func (r BatchResult) count(status ConversionStatus) int {
	n := 0
	for _, a := range r.Archives {
		if a.Status == status {
			n++
		}
	}
	return n
}
