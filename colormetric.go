package asciify

import (
	"fmt"
	"image/color"
)

// ColorEntry pairs a palette color with the glyph that represents it.
type ColorEntry struct {
	Color color.Color
	Glyph string
}

// DefaultColorPalette holds nine colored glyphs spanning the primary and
// secondary hues plus brown and white.
var DefaultColorPalette = []ColorEntry{
	{Color: color.NRGBA{R: 0xFF, A: 0xFF}, Glyph: "❤️"},
	{Color: color.NRGBA{R: 0xFF, G: 0x80, A: 0xFF}, Glyph: "😡"},
	{Color: color.NRGBA{R: 0xFF, G: 0xFF, A: 0xFF}, Glyph: "🌞"},
	{Color: color.NRGBA{G: 0xFF, A: 0xFF}, Glyph: "🍏"},
	{Color: color.NRGBA{R: 0x99, G: 0x66, B: 0x33, A: 0xFF}, Glyph: "🐌"},
	{Color: color.NRGBA{B: 0xFF, A: 0xFF}, Glyph: "🔵"},
	{Color: color.NRGBA{R: 0x80, B: 0x80, A: 0xFF}, Glyph: "👿"},
	{Color: color.NRGBA{R: 0xFF, B: 0xFF, A: 0xFF}, Glyph: "🌂"},
	{Color: color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, Glyph: "🐇"},
}

// ColorMetric picks the glyph whose palette color is nearest to the sample
// in RGB space. Equal distances resolve to the earliest palette entry.
type ColorMetric struct {
	points    []Sample
	glyphs    []string
	withAlpha bool
	strategy  SearchStrategy
	tree      *paletteTree
}

// ColorOption configures a ColorMetric.
type ColorOption func(*ColorMetric)

// WithAlpha includes the alpha channel, at weight 1, in the distance.
func WithAlpha(withAlpha bool) ColorOption {
	return func(m *ColorMetric) {
		m.withAlpha = withAlpha
	}
}

// WithSearch selects the nearest neighbour strategy. It only affects
// speed; lookups return the same glyph under every strategy.
func WithSearch(strategy SearchStrategy) ColorOption {
	return func(m *ColorMetric) {
		m.strategy = strategy
	}
}

// NewColorMetric builds a metric from palette entries in priority order.
// Alpha is part of the distance unless disabled with WithAlpha(false).
func NewColorMetric(entries []ColorEntry, opts ...ColorOption) (*ColorMetric, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("color metric: %w", ErrEmptyPalette)
	}

	m := &ColorMetric{
		points:    make([]Sample, len(entries)),
		glyphs:    make([]string, len(entries)),
		withAlpha: true,
	}
	for i, e := range entries {
		if e.Color == nil {
			return nil, fmt.Errorf("color metric: entry %d (%q) has no color",
				i, e.Glyph)
		}
		m.points[i] = SampleFromColor(e.Color)
		m.glyphs[i] = e.Glyph
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.strategy == SearchAuto {
		m.strategy = SearchLinear
		if len(entries) >= kdTreeThreshold {
			m.strategy = SearchKDTree
		}
	}
	if m.strategy == SearchKDTree {
		dims := 3
		if m.withAlpha {
			dims = 4
		}
		m.tree = newPaletteTree(m.points, dims)
	}
	return m, nil
}

// DefaultColorMetric returns a metric over DefaultColorPalette.
func DefaultColorMetric() *ColorMetric {
	m, err := NewColorMetric(DefaultColorPalette)
	if err != nil {
		panic(err) // the default palette is never empty
	}
	return m
}

// Len returns the number of palette entries.
func (m *ColorMetric) Len() int {
	return len(m.glyphs)
}

// Glyphs returns the palette glyphs in priority order.
func (m *ColorMetric) Glyphs() []string {
	return append([]string(nil), m.glyphs...)
}

// Strategy returns the search strategy in use.
func (m *ColorMetric) Strategy() SearchStrategy {
	return m.strategy
}

// Lookup returns the glyph of the palette entry nearest to s.
func (m *ColorMetric) Lookup(s Sample) string {
	return m.glyphs[m.nearest(s)]
}

// nearest returns the palette index nearest to s.
func (m *ColorMetric) nearest(s Sample) int {
	if m.tree != nil {
		idx, _ := m.tree.nearest(s)
		return idx
	}

	best, bestDist := 0, m.points[0].squaredDistance(s, m.withAlpha)
	for i := 1; i < len(m.points); i++ {
		if d := m.points[i].squaredDistance(s, m.withAlpha); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
