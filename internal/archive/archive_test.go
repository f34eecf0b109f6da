// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/comicpdf/pkg/types"
)

type zipEntry struct {
	name string
	data string
}

func writeZip(t *testing.T, path string, entries []zipEntry) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		if e.data != "" {
			_, err = w.Write([]byte(e.data))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

// fakeRar implements RarTool. It records its calls and optionally writes
// files into the destination to mimic a real extraction.
type fakeRar struct {
	files map[string]string
	err   error
	calls [][2]string
}

func (f *fakeRar) Name() string    { return "fake-unar" }
func (f *fakeRar) Available() bool { return true }

func (f *fakeRar) Extract(ctx context.Context, archive, dest string) error {
	f.calls = append(f.calls, [2]string{archive, dest})
	if f.err != nil {
		return f.err
	}
	for name, data := range f.files {
		p := filepath.Join(dest, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want types.ArchiveKind
	}{
		{"comics/issue1.cbz", types.KindZip},
		{"ISSUE1.CBZ", types.KindZip},
		{"issue1.cbr", types.KindRar},
		{"issue1.CbR", types.KindRar},
		{"notes.txt", types.KindUnsupported},
		{"issue1.zip", types.KindUnsupported},
		{"cbz", types.KindUnsupported},
		{"issue1.cbz.bak", types.KindUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.path))
			assert.Equal(t, tt.want != types.KindUnsupported, IsArchive(tt.path))
		})
	}
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "issue.cbz")
	writeZip(t, src, []zipEntry{
		{name: "chapter1/"},
		{name: "chapter1/page1.png", data: "one"},
		{name: "chapter1/page2.png", data: "two"},
		{name: "cover.jpg", data: "cover"},
		{name: "extras/deep/nested/notes.txt", data: "notes"},
	})
	dest := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(dest, 0o755))

	require.NoError(t, NewExtractor(nil).Extract(context.Background(), src, dest))

	for name, want := range map[string]string{
		"chapter1/page1.png":           "one",
		"chapter1/page2.png":           "two",
		"cover.jpg":                    "cover",
		"extras/deep/nested/notes.txt": "notes",
	} {
		data, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(name)))
		require.NoError(t, err, name)
		assert.Equal(t, want, string(data), name)
	}
}

func TestExtractZipSanitizesEntryNames(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "odd.cbz")
	writeZip(t, src, []zipEntry{
		{name: "../escaped.png", data: "up"},
		{name: "/abs/page.png", data: "abs"},
		{name: "./ch1/../page2.png", data: "mixed"},
		{name: "../"},
	})
	dest := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(dest, 0o755))

	require.NoError(t, NewExtractor(nil).Extract(context.Background(), src, dest))

	for name, want := range map[string]string{
		"escaped.png":   "up",
		"abs/page.png":  "abs",
		"ch1/page2.png": "mixed",
	} {
		data, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(name)))
		require.NoError(t, err, name)
		assert.Equal(t, want, string(data), name)
	}
	assert.NoFileExists(t, filepath.Join(dir, "escaped.png"))
}

func TestEntryPath(t *testing.T) {
	dest := filepath.FromSlash("/tmp/x")
	tests := []struct {
		name string
		want string
	}{
		{"page.png", filepath.Join(dest, "page.png")},
		{"a/b/page.png", filepath.Join(dest, "a", "b", "page.png")},
		{"../../etc/passwd", filepath.Join(dest, "etc", "passwd")},
		{"//lead/page.png", filepath.Join(dest, "lead", "page.png")},
		{"dir/", filepath.Join(dest, "dir")},
		{"..", ""},
		{"./", ""},
	}
	for _, tt := range tests {
		got, err := entryPath(dest, tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestExtractCorruptZip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.cbz")
	require.NoError(t, os.WriteFile(src, []byte("this is not a zip file"), 0o644))

	err := NewExtractor(nil).Extract(context.Background(), src, dir)

	var extractErr *ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, types.KindZip, extractErr.Kind)
	assert.Equal(t, src, extractErr.Archive)
	assert.False(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestExtractUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "readme.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0o644))
	rar := &fakeRar{}

	err := NewExtractor(rar).Extract(context.Background(), src, dir)

	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), ".txt")
	var extractErr *ExtractionError
	assert.False(t, errors.As(err, &extractErr), "unsupported format is not an extraction failure")
	assert.Empty(t, rar.calls)
}

func TestExtractRar(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "issue.cbr")
	require.NoError(t, os.WriteFile(src, []byte("rar"), 0o644))
	dest := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(dest, 0o755))
	rar := &fakeRar{files: map[string]string{"issue/page1.png": "p1"}}

	require.NoError(t, NewExtractor(rar).Extract(context.Background(), src, dest))

	require.Len(t, rar.calls, 1)
	assert.Equal(t, [2]string{src, dest}, rar.calls[0])
	assert.FileExists(t, filepath.Join(dest, "issue", "page1.png"))
}

func TestExtractRarFailures(t *testing.T) {
	tests := []struct {
		name    string
		rar     RarTool
		wantMsg string
	}{
		{
			name:    "tool exits non-zero",
			rar:     &fakeRar{err: errors.New("exit status 1")},
			wantMsg: "exit status 1",
		},
		{
			name:    "no tool available",
			rar:     nil,
			wantMsg: "no RAR extraction tool",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "issue.cbr")
			require.NoError(t, os.WriteFile(src, []byte("rar"), 0o644))

			err := NewExtractor(tt.rar).Extract(context.Background(), src, dir)

			var extractErr *ExtractionError
			require.ErrorAs(t, err, &extractErr)
			assert.Equal(t, types.KindRar, extractErr.Kind)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
