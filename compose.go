package asciify

import (
	"image"
	"image/color"
	"unicode"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// RenderCell is one glyph of the output grid with its display color.
type RenderCell struct {
	Glyph string
	Color color.NRGBA
}

// newCanvas returns a width x height canvas filled with bg, or left
// transparent when bg is nil or fully transparent.
func newCanvas(width, height int, bg color.Color) *image.NRGBA {
	if isTransparent(bg) {
		return image.NewNRGBA(image.Rect(0, 0, width, height))
	}
	return imaging.New(width, height, bg)
}

// composeCells draws a grid of render cells onto a width x height canvas.
// Cell (row, col) starts at (col*width/gridW, row*height/gridH) so the
// canvas keeps the source dimensions however coarse the grid is.
func composeCells(
	cells [][]RenderCell,
	width, height int,
	bg color.Color,
	primary, fallback font.Face,
) *image.NRGBA {
	canvas := newCanvas(width, height, bg)
	if len(cells) == 0 || len(cells[0]) == 0 {
		return canvas
	}

	gridH, gridW := len(cells), len(cells[0])
	blockWidth := float64(width) / float64(gridW)
	blockHeight := float64(height) / float64(gridH)
	ascent := primary.Metrics().Ascent

	for row, line := range cells {
		for col, cell := range line {
			x := int(blockWidth * float64(col))
			y := int(blockHeight * float64(row))
			dot := fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + ascent}
			drawGlyph(canvas, cell, dot, primary, fallback)
		}
	}
	return canvas
}

// drawGlyph draws every rune of cell.Glyph starting at dot. Runes missing
// from the primary face come from the fallback face; runes neither face
// has are skipped and leave the background visible.
func drawGlyph(
	dst draw.Image,
	cell RenderCell,
	dot fixed.Point26_6,
	primary, fallback font.Face,
) {
	src := image.NewUniform(cell.Color)
	for _, r := range cell.Glyph {
		if !printable(r) {
			continue
		}
		face := faceFor(r, primary, fallback)
		if face == nil {
			continue
		}
		dr, mask, maskp, advance, ok := face.Glyph(dot, r)
		if !ok {
			continue
		}
		draw.DrawMask(dst, dr, src, image.Point{}, mask, maskp, draw.Over)
		dot.X += advance
	}
}

// printable reports whether r draws anything on its own.
func printable(r rune) bool {
	return !unicode.Is(unicode.Variation_Selector, r) && !unicode.IsControl(r)
}

// faceFor returns the first of the faces that has r, or nil.
func faceFor(r rune, faces ...font.Face) font.Face {
	for _, face := range faces {
		if face != nil && hasGlyph(face, r) {
			return face
		}
	}
	return nil
}
