package imageutil

import (
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationArea averages every source pixel covered by a
	// destination pixel (box filter). This is the closest equivalent to
	// OpenCV's INTER_AREA and the default for downscaling.
	InterpolationArea Interpolation = iota

	// InterpolationLinear uses bilinear interpolation.
	InterpolationLinear

	// InterpolationCatmullRom uses the Catmull-Rom cubic kernel.
	InterpolationCatmullRom

	// InterpolationNearest uses nearest-neighbor interpolation.
	// Fastest but lowest quality; single pixels can dominate a cell.
	InterpolationNearest
)

// String returns the flag name of the interpolation.
func (i Interpolation) String() string {
	switch i {
	case InterpolationArea:
		return "area"
	case InterpolationLinear:
		return "linear"
	case InterpolationCatmullRom:
		return "catmullrom"
	case InterpolationNearest:
		return "nearest"
	}
	return "unknown"
}

// ParseInterpolation maps a flag name back to an Interpolation.
func ParseInterpolation(name string) (Interpolation, bool) {
	for _, i := range []Interpolation{
		InterpolationArea, InterpolationLinear,
		InterpolationCatmullRom, InterpolationNearest,
	} {
		if i.String() == name {
			return i, true
		}
	}
	return InterpolationArea, false
}

// Resize resamples img to width x height using the given interpolation.
// The result is a straight alpha image with its origin at (0,0). A request
// for the source size returns a copy.
func Resize(img image.Image, width, height int, interp Interpolation) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return imaging.Clone(img)
	}

	var scaler draw.Scaler
	switch interp {
	case InterpolationLinear:
		scaler = draw.BiLinear
	case InterpolationCatmullRom:
		scaler = draw.CatmullRom
	case InterpolationNearest:
		scaler = draw.NearestNeighbor
	default:
		return imaging.Resize(img, width, height, imaging.Box)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	scaler.Scale(dst, dst.Rect, img, b, draw.Src, nil)
	return dst
}

// ResizeToWidth resizes an image to the specified width while maintaining
// aspect ratio. The height is rounded to the nearest pixel and is never
// less than one.
func ResizeToWidth(img image.Image, width int, interp Interpolation) *image.NRGBA {
	b := img.Bounds()
	return Resize(img, width, HeightForWidth(b.Dx(), b.Dy(), width), interp)
}

// HeightForWidth returns the aspect preserving height for a source of
// srcW x srcH scaled to width.
func HeightForWidth(srcW, srcH, width int) int {
	ratio := float64(width) / float64(srcW)
	height := int(ratio*float64(srcH) + 0.5)
	if height < 1 {
		height = 1
	}
	return height
}
