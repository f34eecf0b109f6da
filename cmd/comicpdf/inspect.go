// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/comicpdf/internal/pdf"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <pdf>...",
	Short: "Show the pages and images of PDF files",
	Long: `Inspect reads PDFs back and prints their page sizes and embedded images,
for checking converter output.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().String("format", "text", "output format: text, yaml, or json")

	rootCmd.AddCommand(inspectCmd)
}

// inspection pairs a file with what was read from it.
type inspection struct {
	Path string   `json:"path" yaml:"path"`
	Info pdf.Info `json:"info" yaml:"info"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	var results []inspection
	for _, path := range args {
		info, err := pdf.Inspect(path)
		if err != nil {
			return err
		}
		results = append(results, inspection{Path: path, Info: info})
	}

	w := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "text":
		for _, r := range results {
			printInspection(w, r)
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	default:
		return fmt.Errorf("unknown format %q (use text, yaml, or json)", format)
	}
}

func printInspection(w io.Writer, r inspection) {
	info := r.Info
	fmt.Fprintf(w, "%s: %d pages, PDF %s\n", r.Path, info.PageCount(), info.Version)
	if info.Title != "" {
		fmt.Fprintf(w, "  title:   %s\n", info.Title)
	}
	if info.Creator != "" {
		fmt.Fprintf(w, "  creator: %s\n", info.Creator)
	}
	for i, p := range info.Pages {
		fmt.Fprintf(w, "  page %d: %g x %g pt\n", i+1, p.Width, p.Height)
	}

	spaces := make(map[string]int)
	masks := 0
	for _, img := range info.Images {
		spaces[img.ColorSpace]++
		if img.SoftMask {
			masks++
		}
	}
	names := make([]string, 0, len(spaces))
	for name := range spaces {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %d", name, spaces[name])
	}
	fmt.Fprintf(w, "  images: %d (%s)", len(info.Images), strings.Join(parts, ", "))
	if masks > 0 {
		fmt.Fprintf(w, ", %d with soft mask", masks)
	}
	fmt.Fprintln(w)
}
