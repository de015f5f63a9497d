package asciify

import (
	"image/color"
	"math"
)

// Sample is one normalized RGBA color sample, each channel in [0,1]. A
// Sample is produced once per grid cell and never modified.
type Sample struct {
	R, G, B, A float64
}

// SampleFromBytes normalizes 8-bit channels into a Sample.
func SampleFromBytes(r, g, b, a uint8) Sample {
	return Sample{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}
}

// SampleFromColor converts any color.Color to a straight alpha Sample.
func SampleFromColor(c color.Color) Sample {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return SampleFromBytes(n.R, n.G, n.B, n.A)
}

// NRGBA converts the sample back to 8-bit channels, forcing full opacity.
// Glyph colors are always drawn opaque.
func (s Sample) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: channelToByte(s.R),
		G: channelToByte(s.G),
		B: channelToByte(s.B),
		A: 0xFF,
	}
}

// channelToByte maps [0,1] onto [0,255], clamping out of range values.
func channelToByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// Luminance returns the relative luminance of a sample using the fixed
// ITU-R BT.709 coefficients.
func Luminance(s Sample) float64 {
	return 0.2126*s.R + 0.7152*s.G + 0.0722*s.B
}

// Gray returns an opaque gray color of the given level in [0,1].
func Gray(level float64) color.NRGBA {
	v := channelToByte(level)
	return color.NRGBA{R: v, G: v, B: v, A: 0xFF}
}

// squaredDistance is the squared Euclidean distance between two samples in
// RGB space, with alpha added at weight 1 when withAlpha is set.
func (s Sample) squaredDistance(other Sample, withAlpha bool) float64 {
	dr := s.R - other.R
	dg := s.G - other.G
	db := s.B - other.B
	d := dr*dr + dg*dg + db*db
	if withAlpha {
		da := s.A - other.A
		d += da * da
	}
	return d
}

// component returns the channel addressed by axis: 0=R, 1=G, 2=B, 3=A.
func (s Sample) component(axis int) float64 {
	switch axis {
	case 0:
		return s.R
	case 1:
		return s.G
	case 2:
		return s.B
	default:
		return s.A
	}
}

// isTransparent reports whether c is nil or has zero alpha.
func isTransparent(c color.Color) bool {
	if c == nil {
		return true
	}
	_, _, _, a := c.RGBA()
	return a == 0
}

// colorNRGBA returns an opaque color from 8-bit channels.
func colorNRGBA(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}
}
