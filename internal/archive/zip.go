// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// extractZip writes every entry of the ZIP file at path below dest.
func extractZip(path, dest string) error {
	r, err := zip.OpenReader(path)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := extractZipEntry(f, dest); err != nil {
			return err
		}
	}
	return nil
}

func extractZipEntry(f *zip.File, dest string) error {
	target, err := entryPath(dest, f.Name)
	if err != nil {
		return err
	}
	if target == "" {
		return nil
	}

	if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", f.Name, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", f.Name, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("reading entry %s: %w", f.Name, err)
	}
	return out.Close()
}

// entryPath maps a ZIP entry name to a path under dest. Leading slashes
// and "." or ".." components are dropped, so "/a/../b.png" lands at
// dest/a/b.png. An empty path is returned for names with nothing left.
func entryPath(dest, name string) (string, error) {
	var parts []string
	for _, p := range strings.Split(name, "/") {
		switch p {
		case "", ".", "..":
			continue
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return "", nil
	}
	rel := filepath.Join(parts...)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("entry %q escapes the extraction directory", name)
	}
	return filepath.Join(dest, rel), nil
}
