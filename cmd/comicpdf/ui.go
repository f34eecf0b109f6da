// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/pdiddy/comicpdf/pkg/types"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed)
)

// printOutcome prints the colored ✓/⚠/✗ tally of a run followed by one
// line per failed archive.
func printOutcome(w io.Writer, result types.BatchResult) {
	okColor.Fprintf(w, "✓ %d converted\n", result.Converted())
	if n := result.Empty(); n > 0 {
		warnColor.Fprintf(w, "⚠ %d without images\n", n)
	}
	if n := result.Failed(); n > 0 {
		failColor.Fprintf(w, "✗ %d failed\n", n)
		for _, a := range result.Archives {
			if a.Failed() {
				failColor.Fprintf(w, "    %s: %s\n", filepath.Base(a.Archive), a.Error)
			}
		}
	}
}

// newProgressBar renders batch progress to w, one step per archive.
func newProgressBar(total int, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// progressHook advances bar after each archive.
func progressHook(bar *progressbar.ProgressBar) func(types.ArchiveResult) {
	return func(r types.ArchiveResult) {
		bar.Describe(filepath.Base(r.Archive))
		_ = bar.Add(1)
	}
}
