// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdf

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/comicpdf/internal/images"
)

func entry(name string, w, h int, c color.Color) images.Entry {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return images.Entry{Path: name, Image: img}
}

func TestWritePagesInOrder(t *testing.T) {
	out := filepath.Join(t.TempDir(), "issue.pdf")
	entries := []images.Entry{
		entry("p1.png", 100, 150, color.White),
		entry("p2.png", 200, 120, color.Black),
		entry("p3.png", 64, 64, color.RGBA{R: 200, A: 255}),
	}

	n, err := Write(entries, out, WriteOptions{Title: "issue", Creator: "comicpdf"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	info, err := Inspect(out)
	require.NoError(t, err)
	require.Equal(t, 3, info.PageCount())
	assert.Equal(t, []PageInfo{
		{Width: 100, Height: 150},
		{Width: 200, Height: 120},
		{Width: 64, Height: 64},
	}, info.Pages)
	assert.Equal(t, "issue", info.Title)
	assert.Equal(t, "comicpdf", info.Creator)
	assert.NoFileExists(t, out+".tmp")
}

func TestWriteEmbedsDeviceRGBWithoutMask(t *testing.T) {
	out := filepath.Join(t.TempDir(), "rgb.pdf")
	entries := []images.Entry{
		entry("a.png", 10, 20, color.White),
		entry("b.png", 30, 40, color.RGBA{B: 255, A: 255}),
	}

	_, err := Write(entries, out, WriteOptions{})
	require.NoError(t, err)

	info, err := Inspect(out)
	require.NoError(t, err)
	require.Len(t, info.Images, 2)
	for _, img := range info.Images {
		assert.Equal(t, "DeviceRGB", img.ColorSpace, img.Name)
		assert.False(t, img.SoftMask, img.Name)
	}
	sizes := [][2]int{{info.Images[0].Width, info.Images[0].Height}, {info.Images[1].Width, info.Images[1].Height}}
	assert.ElementsMatch(t, [][2]int{{10, 20}, {30, 40}}, sizes)
}

func TestWriteNoImages(t *testing.T) {
	out := filepath.Join(t.TempDir(), "empty.pdf")

	n, err := Write(nil, out, WriteOptions{})

	require.ErrorIs(t, err, ErrNoImages)
	assert.Zero(t, n)
	assert.NoFileExists(t, out)
}

func TestWriteOverwritesExisting(t *testing.T) {
	out := filepath.Join(t.TempDir(), "issue.pdf")
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0o644))

	_, err := Write([]images.Entry{entry("p1.png", 8, 8, color.White)}, out, WriteOptions{})
	require.NoError(t, err)

	info, err := Inspect(out)
	require.NoError(t, err)
	assert.Equal(t, 1, info.PageCount())
}

func TestWriteRepeatable(t *testing.T) {
	dir := t.TempDir()
	entries := []images.Entry{
		entry("p1.png", 12, 18, color.White),
		entry("p2.png", 18, 12, color.Gray{Y: 90}),
	}
	opts := WriteOptions{Title: "same", CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}

	first := filepath.Join(dir, "first.pdf")
	second := filepath.Join(dir, "second.pdf")
	_, err := Write(entries, first, opts)
	require.NoError(t, err)
	_, err = Write(entries, second, opts)
	require.NoError(t, err)

	a, err := Inspect(first)
	require.NoError(t, err)
	b, err := Inspect(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWriteUnwritableDestination(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing", "issue.pdf")

	_, err := Write([]images.Entry{entry("p1.png", 4, 4, color.White)}, out, WriteOptions{})

	assert.Error(t, err)
	assert.NoFileExists(t, out)
}

func TestInspectNotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))

	_, err := Inspect(path)
	assert.Error(t, err)
}
