package asciify

import (
	"image"

	"github.com/wbrown/asciify/imageutil"
)

// Downscale reduces img to targetColumns pixels wide, preserving aspect
// ratio, using area averaging so that each output pixel approximates the
// mean color of the source region it covers.
//
// A targetColumns of one or less returns img unchanged. Larger values are
// clamped to the smaller of the source width and height.
func Downscale(img image.Image, targetColumns int) image.Image {
	return DownscaleWith(img, targetColumns, imageutil.InterpolationArea)
}

// DownscaleWith is Downscale with an explicit resampling filter.
func DownscaleWith(
	img image.Image,
	targetColumns int,
	interp imageutil.Interpolation,
) image.Image {
	if targetColumns <= 1 {
		return img
	}

	b := img.Bounds()
	targetColumns = min(targetColumns, b.Dx(), b.Dy())
	if targetColumns <= 0 {
		return img
	}
	return imageutil.ResizeToWidth(img, targetColumns, interp)
}
