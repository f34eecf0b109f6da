// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package images collects the page images of an extracted comic archive in
// reading order and normalizes them to opaque RGB.
package images

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/pdiddy/comicpdf/internal/natsort"
)

// supportedExts lists the raster formats collected, lowercased.
var supportedExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tiff": true,
	".tif":  true,
	".bmp":  true,
}

// Entry is one decoded page image and the file it came from.
type Entry struct {
	Path  string
	Image *image.RGBA
}

// Options controls collection.
type Options struct {
	// SkipUndecodable logs and skips images that fail to decode. By default
	// the first decode failure aborts the collection.
	SkipUndecodable bool

	// Logger receives per-image diagnostics. Nil disables logging.
	Logger *zerolog.Logger
}

func (o Options) logger() *zerolog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

// DecodeError reports an image file that could not be read or decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding image %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsSupported reports whether name has a collected image extension.
func IsSupported(name string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(name))]
}

// Collect walks root and returns every supported image in reading order.
// Within a directory files are ordered by natural sort; directories are
// visited in walk order, each directory's own files before its
// subdirectories. An empty result is not an error.
func Collect(root string, opts Options) ([]Entry, error) {
	log := opts.logger()
	var entries []Entry

	err := filepath.WalkDir(root, func(dir string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if dir != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}

		names, err := imageFiles(dir)
		if err != nil {
			return err
		}
		for _, name := range names {
			path := filepath.Join(dir, name)
			img, err := Load(path)
			if err != nil {
				if opts.SkipUndecodable {
					log.Warn().Err(err).Str("path", path).Msg("skipping undecodable image")
					continue
				}
				return err
			}
			log.Debug().Str("path", path).Int("width", img.Rect.Dx()).Int("height", img.Rect.Dy()).Msg("collected image")
			entries = append(entries, Entry{Path: path, Image: img})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// imageFiles lists the supported image files directly inside dir in
// natural order.
func imageFiles(dir string) ([]string, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	var names []string
	for _, de := range des {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		// AppleDouble "._page1.png" files carry resource forks, not images.
		if strings.HasPrefix(name, "._") {
			continue
		}
		if IsSupported(name) {
			names = append(names, name)
		}
	}
	natsort.Sort(names)
	return names, nil
}

// skipDir reports whether a directory holds archiver metadata rather than pages.
func skipDir(name string) bool {
	return name == "__MACOSX"
}

// Load decodes the image at path and normalizes it with Normalize.
// The format is detected from the file contents.
func Load(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return Normalize(img), nil
}

// Normalize returns img as an opaque RGBA image with its origin at (0, 0).
// Grayscale, paletted, CMYK and YCbCr images are converted; translucent
// pixels are composited over white, so every alpha value in the result is 255.
func Normalize(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if rgba, ok := img.(*image.RGBA); ok && rgba.Opaque() {
		draw.Draw(dst, dst.Rect, rgba, b.Min, draw.Src)
		return dst
	}
	draw.Draw(dst, dst.Rect, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Over)
	return dst
}
