// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConversionConfig holds settings shared by single-archive and batch conversion.
type ConversionConfig struct {
	// RarTool is the binary used to unpack CBR archives ("unar" or "7z").
	// Empty means detect one on PATH.
	RarTool string `json:"rar_tool,omitempty" yaml:"rar_tool,omitempty"`

	// TempDir is where per-archive extraction directories are created.
	// Empty means the system temp directory.
	TempDir string `json:"temp_dir,omitempty" yaml:"temp_dir,omitempty"`

	// SkipBadImages skips images that fail to decode instead of abandoning
	// the whole archive.
	SkipBadImages bool `json:"skip_bad_images" yaml:"skip_bad_images"`
}

// BatchConfig holds settings for converting a directory of archives.
// It is passed into the batch driver for one run.
type BatchConfig struct {
	ConversionConfig `yaml:",inline"`

	// InputDir is scanned (non-recursively) for .cbz and .cbr files.
	InputDir string `json:"input_dir" yaml:"input_dir"`

	// OutputDir receives one <archive-basename>.pdf per converted archive.
	// It is created if missing.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// ReportPath, when set, receives a YAML or JSON report of the run.
	ReportPath string `json:"report,omitempty" yaml:"report,omitempty"`
}

// HistoryConfig controls the conversion history database.
type HistoryConfig struct {
	// Path is the SQLite database file (default ".comicpdf/history.db").
	Path string `json:"path" yaml:"path"`

	// Disabled turns off recording.
	Disabled bool `json:"disabled" yaml:"disabled"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	// Level is a zerolog level name: debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level"`

	// Format is "console" (default) or "json".
	Format string `json:"format" yaml:"format"`
}
