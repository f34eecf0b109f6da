// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/comicpdf/pkg/types"
)

// report is the on-disk form of a batch result. It adds the counts so a
// reader does not have to tally the archive list.
type report struct {
	types.BatchResult `yaml:",inline"`

	Summary summary `json:"summary" yaml:"summary"`
}

type summary struct {
	Converted int `json:"converted" yaml:"converted"`
	Empty     int `json:"empty" yaml:"empty"`
	Failed    int `json:"failed" yaml:"failed"`
	Total     int `json:"total" yaml:"total"`
}

// WriteReport writes result to path as YAML (.yaml, .yml) or JSON (.json),
// chosen by extension.
func WriteReport(result types.BatchResult, path string) error {
	r := report{
		BatchResult: result,
		Summary: summary{
			Converted: result.Converted(),
			Empty:     result.Empty(),
			Failed:    result.Failed(),
			Total:     result.Total(),
		},
	}

	var data []byte
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(r)
	case ".json":
		data, err = json.MarshalIndent(r, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unsupported report format %q (use .yaml, .yml or .json)", ext)
	}
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}
