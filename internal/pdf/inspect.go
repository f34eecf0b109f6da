// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdf

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/reader"
)

// Info describes a PDF read back from disk.
type Info struct {
	Version string      `json:"version" yaml:"version"`
	Title   string      `json:"title,omitempty" yaml:"title,omitempty"`
	Creator string      `json:"creator,omitempty" yaml:"creator,omitempty"`
	Pages   []PageInfo  `json:"pages" yaml:"pages"`
	Images  []ImageInfo `json:"images" yaml:"images"`
}

// PageInfo is a page's MediaBox size in points.
type PageInfo struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// ImageInfo describes one image XObject referenced by the document's pages.
type ImageInfo struct {
	Name       string `json:"name" yaml:"name"`
	Width      int    `json:"width" yaml:"width"`
	Height     int    `json:"height" yaml:"height"`
	ColorSpace string `json:"color_space" yaml:"color_space"`
	SoftMask   bool   `json:"soft_mask" yaml:"soft_mask"`
}

// PageCount returns the number of pages.
func (i Info) PageCount() int {
	return len(i.Pages)
}

// Inspect opens the PDF at path and reports its pages and images.
// Images shared by several pages are listed once, sorted by name.
func Inspect(path string) (Info, error) {
	r, err := reader.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	info := Info{Version: r.Version().String()}
	if dict, err := r.GetInfo(); err == nil && dict != nil {
		info.Title = infoString(dict, "Title")
		info.Creator = infoString(dict, "Creator")
	}

	n, err := r.PageCount()
	if err != nil {
		return Info{}, fmt.Errorf("counting pages in %s: %w", path, err)
	}

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		page, err := r.GetPage(i)
		if err != nil {
			return Info{}, fmt.Errorf("reading page %d of %s: %w", i+1, path, err)
		}
		w, err := page.Width()
		if err != nil {
			return Info{}, fmt.Errorf("page %d width: %w", i+1, err)
		}
		h, err := page.Height()
		if err != nil {
			return Info{}, fmt.Errorf("page %d height: %w", i+1, err)
		}
		info.Pages = append(info.Pages, PageInfo{Width: w, Height: h})

		resources, err := page.Resources()
		if err != nil {
			continue
		}
		imgs, err := imageXObjects(r, resources)
		if err != nil {
			return Info{}, fmt.Errorf("page %d images: %w", i+1, err)
		}
		for _, img := range imgs {
			if !seen[img.Name] {
				seen[img.Name] = true
				info.Images = append(info.Images, img)
			}
		}
	}

	sort.Slice(info.Images, func(a, b int) bool {
		return info.Images[a].Name < info.Images[b].Name
	})
	return info, nil
}

// imageXObjects lists the image XObjects in a resource dictionary without
// decoding their data.
func imageXObjects(r *reader.Reader, resources core.Dict) ([]ImageInfo, error) {
	obj := resources.Get("XObject")
	if obj == nil {
		return nil, nil
	}
	resolved, err := r.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("resolving XObject dictionary: %w", err)
	}
	xobjects, ok := resolved.(core.Dict)
	if !ok {
		return nil, nil
	}

	var out []ImageInfo
	for name, ref := range xobjects {
		resolved, err := r.Resolve(ref)
		if err != nil {
			return nil, fmt.Errorf("resolving XObject %s: %w", name, err)
		}
		stream, ok := resolved.(*core.Stream)
		if !ok {
			continue
		}
		if subtype, _ := stream.Dict.GetName("Subtype"); subtype != "Image" {
			continue
		}
		img := ImageInfo{
			Name:     name,
			SoftMask: stream.Dict.Has("SMask"),
		}
		if w, ok := stream.Dict.GetInt("Width"); ok {
			img.Width = int(w)
		}
		if h, ok := stream.Dict.GetInt("Height"); ok {
			img.Height = int(h)
		}
		img.ColorSpace = colorSpace(r, stream.Dict.Get("ColorSpace"))
		out = append(out, img)
	}
	return out, nil
}

// colorSpace names a colour space given either directly or as an array
// such as [/Indexed /DeviceRGB ...], where the family name comes first.
func colorSpace(r *reader.Reader, obj core.Object) string {
	if obj == nil {
		return ""
	}
	resolved, err := r.Resolve(obj)
	if err != nil {
		return ""
	}
	switch v := resolved.(type) {
	case core.Name:
		return string(v)
	case core.Array:
		if len(v) > 0 {
			if n, ok := v[0].(core.Name); ok {
				return string(n)
			}
		}
	}
	return ""
}

// infoString reads a text string from the document info dictionary,
// decoding UTF-16BE when it carries a byte order mark.
func infoString(dict core.Dict, key string) string {
	s, ok := dict.GetString(key)
	if !ok {
		return ""
	}
	raw := string(s)
	if !strings.HasPrefix(raw, "\xfe\xff") {
		return raw
	}
	b := []byte(raw[2:])
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	return string(utf16.Decode(units))
}
