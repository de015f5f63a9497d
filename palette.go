package asciify

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

//go:embed palettes/*.json
var paletteFS embed.FS

// readPaletteData returns the contents of a named palette. The embedded
// palettes are tried first, then name is read as a file path.
func readPaletteData(name string) ([]byte, error) {
	// First, try the VFS.
	embedded := path.Join("palettes", strings.TrimSuffix(name, ".json")+".json")
	data, vfsErr := paletteFS.ReadFile(embedded)
	if vfsErr == nil {
		return data, nil
	}
	// If the VFS fails, try the filesystem.
	data, fsErr := os.ReadFile(name)
	if fsErr != nil {
		return nil, fmt.Errorf("error reading palette %q: %w", name, fsErr)
	}
	return data, nil
}

// EmbeddedPalettes lists the names of the palettes shipped with the
// package, sorted.
func EmbeddedPalettes() []string {
	matches, _ := fs.Glob(paletteFS, "palettes/*.json")
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ".json"))
	}
	sort.Strings(names)
	return names
}

// ReadLuminanceMapping decodes a luminance palette: a JSON object mapping
// luminance values in [0,1], written as strings, to glyphs.
func ReadLuminanceMapping(data []byte) (map[float64]string, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error unmarshalling JSON: %w", err)
	}
	mapping := make(map[float64]string, len(raw))
	for key, glyph := range raw {
		lum, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return nil, fmt.Errorf("error parsing luminance %q: %w", key, err)
		}
		mapping[lum] = glyph
	}
	return mapping, nil
}

// colorEntryJSON is one element of a color palette file.
type colorEntryJSON struct {
	Color string `json:"color"`
	Glyph string `json:"glyph"`
}

// ReadColorEntries decodes a color palette: a JSON array of
// {"color": "#rrggbb", "glyph": "..."} objects in priority order.
func ReadColorEntries(data []byte) ([]ColorEntry, error) {
	var raw []colorEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error unmarshalling JSON: %w", err)
	}
	entries := make([]ColorEntry, len(raw))
	for i, e := range raw {
		c, err := colorful.Hex(e.Color)
		if err != nil {
			return nil, fmt.Errorf("error parsing color %q of entry %d: %w",
				e.Color, i, err)
		}
		r, g, b := c.RGB255()
		entries[i] = ColorEntry{
			Color: colorNRGBA(r, g, b),
			Glyph: e.Glyph,
		}
	}
	return entries, nil
}

// LoadLuminancePalette loads a named luminance palette and builds a
// metric from it.
func LoadLuminancePalette(name string, opts ...LuminanceOption) (*LuminanceMetric, error) {
	data, err := readPaletteData(name)
	if err != nil {
		return nil, err
	}
	mapping, err := ReadLuminanceMapping(data)
	if err != nil {
		return nil, fmt.Errorf("palette %q: %w", name, err)
	}
	return NewLuminanceMetric(mapping, opts...)
}

// LoadColorPalette loads a named color palette and builds a metric from
// it.
func LoadColorPalette(name string, opts ...ColorOption) (*ColorMetric, error) {
	data, err := readPaletteData(name)
	if err != nil {
		return nil, err
	}
	entries, err := ReadColorEntries(data)
	if err != nil {
		return nil, fmt.Errorf("palette %q: %w", name, err)
	}
	return NewColorMetric(entries, opts...)
}
