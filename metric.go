package asciify

// GlyphMetric maps one sample to the palette glyph closest to it under the
// metric's own notion of distance. Implementations are immutable after
// construction and safe for concurrent use.
type GlyphMetric interface {
	Lookup(s Sample) string
}

// LuminanceSource is implemented by metrics that derive their lookup key
// from luminance. GrayScale rendering colors glyphs with the same
// (possibly inverted) value used for the lookup.
type LuminanceSource interface {
	Luminance(s Sample) float64
}

// SearchStrategy selects how a metric finds its nearest palette entry.
// Every strategy returns the same glyph for the same sample.
type SearchStrategy int

const (
	// SearchAuto picks a strategy from the palette size.
	SearchAuto SearchStrategy = iota
	// SearchLinear scans every palette entry.
	SearchLinear
	// SearchKDTree walks a KD-tree built over the palette.
	SearchKDTree
)

// kdTreeThreshold is the palette size from which SearchAuto uses a
// KD-tree instead of a linear scan.
const kdTreeThreshold = 32

// PaletteGlyphs returns the glyphs m can return, or nil when m does not
// expose its palette.
func PaletteGlyphs(m GlyphMetric) []string {
	switch m := m.(type) {
	case *LuminanceMetric:
		glyphs := make([]string, 0, len(m.entries))
		for _, e := range m.entries {
			glyphs = append(glyphs, e.Glyph)
		}
		return glyphs
	case *ColorMetric:
		return m.Glyphs()
	}
	return nil
}
