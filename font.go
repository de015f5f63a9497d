package asciify

import (
	"fmt"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Typeface produces the font faces glyphs are drawn with. NewFace is
// called once per conversion and the face is closed afterwards, so faces
// that keep internal caches are never shared between goroutines.
type Typeface interface {
	NewFace() font.Face
}

// StaticFace is a Typeface over a face that is safe for concurrent use,
// such as the bitmap faces of x/image/font/basicfont.
type StaticFace struct {
	Face font.Face
}

// NewFace returns the wrapped face.
func (s StaticFace) NewFace() font.Face {
	return staticFace{s.Face}
}

// staticFace hides Close so a shared face survives the end of a
// conversion.
type staticFace struct {
	font.Face
}

func (staticFace) Close() error { return nil }

// HasGlyph reports whether a bitmap face has r itself rather than its
// replacement glyph.
func (s staticFace) HasGlyph(r rune) bool {
	bf, ok := s.Face.(*basicfont.Face)
	if !ok {
		_, ok = s.Face.GlyphAdvance(r)
		return ok
	}
	for _, rng := range bf.Ranges {
		if rng.Low <= r && r < rng.High {
			return true
		}
	}
	return false
}

// DefaultTypeface is the 7x13 fixed bitmap face from x/image.
var DefaultTypeface Typeface = StaticFace{Face: basicfont.Face7x13}

// TrueType is a parsed TrueType font rendered at a fixed size.
type TrueType struct {
	font *truetype.Font
	size float64
}

// LoadTrueType loads a TrueType font from file.
func LoadTrueType(path string, size float64) (*TrueType, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	return ParseTrueType(fontBytes, size)
}

// LoadFontFace loads a TrueType font and returns a single face of it.
// The face is not safe for concurrent use; pass the TrueType itself to
// WithFace when converting from several goroutines.
func LoadFontFace(path string, size float64) (font.Face, error) {
	tt, err := LoadTrueType(path, size)
	if err != nil {
		return nil, err
	}
	return tt.NewFace(), nil
}

// ParseTrueType parses TrueType font data.
func ParseTrueType(data []byte, size float64) (*TrueType, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %v", size)
	}
	f, err := freetype.ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &TrueType{font: f, size: size}, nil
}

// Size returns the point size faces are created at.
func (t *TrueType) Size() float64 {
	return t.size
}

// Name returns the full font name recorded in the font file.
func (t *TrueType) Name() string {
	return t.font.Name(truetype.NameIDFontFullName)
}

// NewFace creates a hinted face at 72 DPI, so one point is one pixel.
func (t *TrueType) NewFace() font.Face {
	return trueTypeFace{
		Face: truetype.NewFace(t.font, &truetype.Options{
			Size:    t.size,
			DPI:     72,
			Hinting: font.HintingFull,
		}),
		font: t.font,
	}
}

// trueTypeFace remembers its font so missing runes, which truetype
// draws as the .notdef glyph, can be detected.
type trueTypeFace struct {
	font.Face
	font *truetype.Font
}

// HasGlyph reports whether the font maps r to a real glyph.
func (f trueTypeFace) HasGlyph(r rune) bool {
	return f.font.Index(r) != 0
}

// glyphCoverage is implemented by faces that can tell a real glyph from
// a replacement one.
type glyphCoverage interface {
	HasGlyph(r rune) bool
}

// hasGlyph reports whether face can draw r.
func hasGlyph(face font.Face, r rune) bool {
	if c, ok := face.(glyphCoverage); ok {
		return c.HasGlyph(r)
	}
	_, ok := face.GlyphAdvance(r)
	return ok
}
