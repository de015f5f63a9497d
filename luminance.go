package asciify

import (
	"fmt"
	"math"
	"sort"
)

// DefaultLuminanceMapping spans [0,1] from a dense glyph at 0.0 to a space
// at 1.0.
var DefaultLuminanceMapping = map[float64]string{
	1.0:  " ",
	0.95: "`",
	0.92: ".",
	0.9:  ",",
	0.8:  "-",
	0.75: "~",
	0.7:  "+",
	0.65: "<",
	0.6:  ">",
	0.55: "o",
	0.5:  "=",
	0.35: "*",
	0.3:  "%",
	0.1:  "X",
	0.0:  "@",
}

// GlyphEntry is one point of a luminance palette.
type GlyphEntry struct {
	Luminance float64
	Glyph     string
}

// LuminanceMetric picks the glyph whose luminance is closest to the
// sample's relative luminance.
type LuminanceMetric struct {
	entries []GlyphEntry // sorted by ascending luminance
	values  []float64    // entries[i].Luminance, for binary search
	invert  bool
}

// LuminanceOption configures a LuminanceMetric.
type LuminanceOption func(*LuminanceMetric)

// WithInvert makes the metric look up 1-L instead of L.
func WithInvert(invert bool) LuminanceOption {
	return func(m *LuminanceMetric) {
		m.invert = invert
	}
}

// NewLuminanceMetric builds a metric from a luminance to glyph mapping.
// Inversion is disabled unless WithInvert is given.
func NewLuminanceMetric(
	mapping map[float64]string,
	opts ...LuminanceOption,
) (*LuminanceMetric, error) {
	if len(mapping) == 0 {
		return nil, fmt.Errorf("luminance metric: %w", ErrEmptyPalette)
	}

	m := &LuminanceMetric{
		entries: make([]GlyphEntry, 0, len(mapping)),
		values:  make([]float64, 0, len(mapping)),
	}
	for lum, glyph := range mapping {
		if math.IsNaN(lum) {
			return nil, fmt.Errorf("luminance metric: NaN key for %q", glyph)
		}
		m.entries = append(m.entries, GlyphEntry{Luminance: lum, Glyph: glyph})
	}
	sort.Slice(m.entries, func(i, j int) bool {
		return m.entries[i].Luminance < m.entries[j].Luminance
	})
	for _, e := range m.entries {
		m.values = append(m.values, e.Luminance)
	}

	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// DefaultLuminanceMetric returns the 15 glyph default palette with
// inversion enabled, so bright regions map to dense glyphs.
func DefaultLuminanceMetric() *LuminanceMetric {
	m, err := NewLuminanceMetric(DefaultLuminanceMapping, WithInvert(true))
	if err != nil {
		panic(err) // the default mapping is never empty
	}
	return m
}

// Inverted reports whether the metric uses 1-L.
func (m *LuminanceMetric) Inverted() bool {
	return m.invert
}

// Entries returns a copy of the palette in ascending luminance order.
func (m *LuminanceMetric) Entries() []GlyphEntry {
	return append([]GlyphEntry(nil), m.entries...)
}

// Luminance returns the lookup key of s: its relative luminance, inverted
// when the metric is configured to do so.
func (m *LuminanceMetric) Luminance(s Sample) float64 {
	l := Luminance(s)
	if m.invert {
		l = 1 - l
	}
	return l
}

// Lookup returns the glyph nearest to the sample's luminance. When two
// entries are equally close the one with the smaller luminance wins.
func (m *LuminanceMetric) Lookup(s Sample) string {
	return m.entries[m.nearest(m.Luminance(s))].Glyph
}

// nearest returns the index of the entry closest to l. The table is
// sorted, so only the neighbours around the insertion point can win.
func (m *LuminanceMetric) nearest(l float64) int {
	i := sort.SearchFloat64s(m.values, l)
	switch {
	case i == 0:
		return 0
	case i == len(m.values):
		return i - 1
	}
	// values[i-1] < l <= values[i]
	if math.Abs(m.values[i]-l) < math.Abs(l-m.values[i-1]) {
		return i
	}
	return i - 1
}
