// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdf assembles page images into a PDF document and reads produced
// documents back for verification.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/pdiddy/comicpdf/internal/images"
)

// ErrNoImages is returned by Write when there is nothing to page.
var ErrNoImages = errors.New("no images to write")

// WriteOptions carries document metadata.
type WriteOptions struct {
	Title   string
	Creator string

	// CreatedAt is recorded as both creation and modification date. The
	// zero value leaves fpdf's default (the current time).
	CreatedAt time.Time
}

// Write renders one page per entry, in order, into outPath. Each page is
// exactly the image's pixel size in points and the image covers it from
// the top-left corner. Images are embedded losslessly as PNG. An existing
// file at outPath is replaced; on failure no file is left at outPath.
// Returns the number of pages written.
func Write(entries []images.Entry, outPath string, opts WriteOptions) (int, error) {
	if len(entries) == 0 {
		return 0, ErrNoImages
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           pageSize(entries[0]),
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCatalogSort(true)
	if opts.Title != "" {
		doc.SetTitle(opts.Title, true)
	}
	if opts.Creator != "" {
		doc.SetCreator(opts.Creator, true)
	}
	if !opts.CreatedAt.IsZero() {
		doc.SetCreationDate(opts.CreatedAt)
		doc.SetModificationDate(opts.CreatedAt)
	}

	for i, e := range entries {
		if err := addPage(doc, i, e); err != nil {
			return 0, err
		}
	}

	tmp := outPath + ".tmp"
	if err := doc.OutputFileAndClose(tmp); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("writing %s: %w", outPath, err)
	}
	if err := os.Rename(tmp, outPath); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return len(entries), nil
}

func pageSize(e images.Entry) fpdf.SizeType {
	return fpdf.SizeType{
		Wd: float64(e.Image.Rect.Dx()),
		Ht: float64(e.Image.Rect.Dy()),
	}
}

func addPage(doc *fpdf.Fpdf, i int, e images.Entry) error {
	size := pageSize(e)
	doc.AddPageFormat("P", size)

	var buf bytes.Buffer
	if err := png.Encode(&buf, e.Image); err != nil {
		return fmt.Errorf("encoding page %d (%s): %w", i+1, e.Path, err)
	}

	name := fmt.Sprintf("page%d", i+1)
	opt := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader(name, opt, &buf)
	doc.ImageOptions(name, 0, 0, size.Wd, size.Ht, false, opt, 0, "")
	if doc.Err() {
		return fmt.Errorf("adding page %d (%s): %w", i+1, e.Path, doc.Error())
	}
	return nil
}
