// Package imageutil provides the image plumbing used around the glyph
// conversion pipeline: a straight alpha image wrapper, decoding and
// encoding, and resampling filters.
package imageutil

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// RGB represents a color in the RGB color space with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// ToColor converts RGB to an opaque color.NRGBA.
func (rgb RGB) ToColor() color.NRGBA {
	return color.NRGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// RGBFromColor converts a color.Color to RGB, dropping alpha.
func RGBFromColor(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B}
}

// Image wraps image.NRGBA with convenience methods for pixel access.
// The wrapped image always has its origin at (0,0).
type Image struct {
	*image.NRGBA
}

// NewImage creates a new transparent Image with the specified dimensions.
func NewImage(width, height int) *Image {
	return &Image{
		NRGBA: image.NewNRGBA(image.Rect(0, 0, width, height)),
	}
}

// FromImage converts any image.Image to an Image, moving its origin to
// (0,0).
func FromImage(img image.Image) *Image {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return &Image{NRGBA: n}
	}
	return &Image{NRGBA: imaging.Clone(img)}
}

// Width returns the image width.
func (img *Image) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *Image) Height() int {
	return img.Bounds().Dy()
}

// GetRGB returns the RGB value at (x, y).
func (img *Image) GetRGB(x, y int) RGB {
	c := img.NRGBAAt(x, y)
	return RGB{R: c.R, G: c.G, B: c.B}
}

// SetRGB sets an opaque RGB value at (x, y).
func (img *Image) SetRGB(x, y int, c RGB) {
	img.SetNRGBA(x, y, c.ToColor())
}

// Clone creates a deep copy of the image.
func (img *Image) Clone() *Image {
	clone := NewImage(img.Width(), img.Height())
	copy(clone.Pix, img.Pix)
	return clone
}
