package asciify

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	"golang.org/x/image/font"

	"github.com/wbrown/asciify/imageutil"
	"github.com/wbrown/asciify/internal/log"
)

// ColorMode selects how glyphs are colored when rendering an image.
type ColorMode int

const (
	// ColorModeBlackAndWhite draws black glyphs on a white background.
	ColorModeBlackAndWhite ColorMode = iota
	// ColorModeGrayScale colors each glyph with its lookup luminance.
	ColorModeGrayScale
	// ColorModeColor colors each glyph with its source region's color.
	ColorModeColor
)

// String returns the flag name of the mode.
func (m ColorMode) String() string {
	switch m {
	case ColorModeBlackAndWhite:
		return "bw"
	case ColorModeGrayScale:
		return "gray"
	case ColorModeColor:
		return "color"
	}
	return fmt.Sprintf("ColorMode(%d)", int(m))
}

// ParseColorMode maps a flag name back to a ColorMode.
func ParseColorMode(name string) (ColorMode, error) {
	switch strings.ToLower(name) {
	case "bw", "blackandwhite", "black-and-white":
		return ColorModeBlackAndWhite, nil
	case "gray", "grey", "grayscale", "greyscale":
		return ColorModeGrayScale, nil
	case "color", "colour":
		return ColorModeColor, nil
	}
	return 0, fmt.Errorf("unknown color mode %q (bw, gray or color)", name)
}

// Default configuration values.
const (
	DefaultCellSize   = 12.0
	DefaultMaxWorkers = 4
)

// Converter turns images into glyph grids, text or re-rendered images.
//
// A Converter keeps no per-conversion state: its configuration is only
// read while converting, so one Converter may run many conversions
// concurrently. Changing the configuration while a conversion is in
// flight is not supported.
type Converter struct {
	// CellSize is the width in pixels of one glyph cell. It derives the
	// column count when Columns is not set.
	CellSize float64
	// Columns, when positive, fixes the number of grid columns.
	Columns int
	// Background fills the output canvas. Nil or a fully transparent
	// color leaves the canvas transparent.
	Background color.Color
	// ColorMode selects how glyphs are colored in image output.
	ColorMode ColorMode
	// Metric maps samples to glyphs.
	Metric GlyphMetric
	// Interpolation is the filter used when downscaling.
	Interpolation imageutil.Interpolation
	// Typeface draws glyphs in image output; Fallback supplies glyphs
	// the typeface lacks.
	Typeface Typeface
	Fallback Typeface

	async *asyncPool
}

// Option is a functional option for configuring a Converter.
type Option func(*Converter)

// NewConverter creates a Converter with the given options.
// Default values: CellSize=12, no fixed Columns, transparent Background,
// ColorMode=Color, Metric=DefaultLuminanceMetric() (inverted), area
// interpolation, Typeface=DefaultTypeface, MaxWorkers=4.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		CellSize:      DefaultCellSize,
		Background:    color.Transparent,
		ColorMode:     ColorModeColor,
		Metric:        DefaultLuminanceMetric(),
		Interpolation: imageutil.InterpolationArea,
		Typeface:      DefaultTypeface,
		async:         newAsyncPool(DefaultMaxWorkers),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithCellSize sets the glyph cell width used to derive the column count.
func WithCellSize(size float64) Option {
	return func(c *Converter) {
		c.CellSize = size
	}
}

// WithColumns fixes the number of grid columns. Zero or less falls back
// to the cell size.
func WithColumns(columns int) Option {
	return func(c *Converter) {
		c.Columns = columns
	}
}

// WithBackground sets the canvas background.
func WithBackground(bg color.Color) Option {
	return func(c *Converter) {
		c.Background = bg
	}
}

// WithColorMode sets the glyph coloring mode.
func WithColorMode(mode ColorMode) Option {
	return func(c *Converter) {
		c.ColorMode = mode
	}
}

// WithMetric sets the glyph metric.
func WithMetric(m GlyphMetric) Option {
	return func(c *Converter) {
		c.Metric = m
	}
}

// WithInterpolation sets the downscaling filter.
func WithInterpolation(interp imageutil.Interpolation) Option {
	return func(c *Converter) {
		c.Interpolation = interp
	}
}

// WithFace sets the typeface glyphs are drawn with.
func WithFace(tf Typeface) Option {
	return func(c *Converter) {
		c.Typeface = tf
	}
}

// WithFallbackFace sets the typeface used for glyphs the primary lacks.
func WithFallbackFace(tf Typeface) Option {
	return func(c *Converter) {
		c.Fallback = tf
	}
}

// WithMaxWorkers bounds the number of asynchronous conversions that run at
// the same time.
func WithMaxWorkers(n int) Option {
	return func(c *Converter) {
		c.async = newAsyncPool(n)
	}
}

// GridColumns returns the number of grid columns for a source of the
// given width: Columns when positive, otherwise floor(width / CellSize).
func (c *Converter) GridColumns(sourceWidth int) int {
	if c.Columns > 0 {
		return c.Columns
	}
	if c.CellSize <= 0 {
		return sourceWidth
	}
	return int(float64(sourceWidth) / c.CellSize)
}

// pixelGrid downscales img to the configured column count and samples it.
func (c *Converter) pixelGrid(img image.Image) (*PixelGrid, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty bounds %v", ErrInvalidImage, b)
	}
	scaled := DownscaleWith(img, c.GridColumns(b.Dx()), c.Interpolation)
	return PixelGridFromImage(scaled)
}

// metric returns the configured metric, or the default one when unset.
func (c *Converter) metric() GlyphMetric {
	if c.Metric == nil {
		return DefaultLuminanceMetric()
	}
	return c.Metric
}

// renderMetric returns the metric image and ANSI output pick glyphs with.
// BlackAndWhite needs a luminance metric and falls back to the default one.
func (c *Converter) renderMetric() GlyphMetric {
	metric := c.metric()
	if c.ColorMode != ColorModeBlackAndWhite {
		return metric
	}
	if lum, ok := metric.(*LuminanceMetric); ok {
		return lum
	}
	return DefaultLuminanceMetric()
}

// cellResolver returns the function mapping one sample to its render cell
// under the configured color mode.
func (c *Converter) cellResolver() func(Sample) RenderCell {
	metric := c.renderMetric()
	switch c.ColorMode {
	case ColorModeBlackAndWhite:
		black := color.NRGBA{A: 0xFF}
		return func(s Sample) RenderCell {
			return RenderCell{Glyph: metric.Lookup(s), Color: black}
		}
	case ColorModeGrayScale:
		luminance := Luminance
		if src, ok := metric.(LuminanceSource); ok {
			luminance = src.Luminance
		}
		return func(s Sample) RenderCell {
			return RenderCell{Glyph: metric.Lookup(s), Color: Gray(luminance(s))}
		}
	default:
		return func(s Sample) RenderCell {
			return RenderCell{Glyph: metric.Lookup(s), Color: s.NRGBA()}
		}
	}
}

// ConvertToGrid converts img into a row-major grid of glyphs and colors.
func (c *Converter) ConvertToGrid(img image.Image) ([][]RenderCell, error) {
	start := time.Now()
	grid, err := c.pixelGrid(img)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	cells := MapGrid(grid, c.cellResolver())
	log.Debugf("converted %dx%d image to %dx%d grid in %v",
		img.Bounds().Dx(), img.Bounds().Dy(),
		grid.Width(), grid.Height(), time.Since(start))
	return cells, nil
}

// ConvertToText converts img into plain text: every glyph is followed by
// a single space and every row by a newline. Text carries no color, so it
// ignores ColorMode and always looks glyphs up with the configured metric,
// even in BlackAndWhite mode where image and ANSI output fall back to the
// default luminance metric.
func (c *Converter) ConvertToText(img image.Image) (string, error) {
	grid, err := c.pixelGrid(img)
	if err != nil {
		return "", fmt.Errorf("convert to text: %w", err)
	}
	glyphs := MapGrid(grid, c.metric().Lookup)

	var sb strings.Builder
	for _, row := range glyphs {
		for _, glyph := range row {
			sb.WriteString(glyph)
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// GlyphCoverage reports how many of the glyphs ConvertToImage can emit
// have at least one rune the configured faces draw, out of total. total is
// zero when the metric does not expose its palette.
func (c *Converter) GlyphCoverage() (drawable, total int) {
	primary, fallback, closeFaces := c.faces()
	defer closeFaces()

	for _, glyph := range PaletteGlyphs(c.renderMetric()) {
		total++
		for _, r := range glyph {
			if printable(r) && faceFor(r, primary, fallback) != nil {
				drawable++
				break
			}
		}
	}
	return drawable, total
}

// faces opens the primary face and the fallback face, which is the
// primary one when no fallback is configured. closeFaces closes both.
func (c *Converter) faces() (primary, fallback font.Face, closeFaces func()) {
	tf := c.Typeface
	if tf == nil {
		tf = DefaultTypeface
	}
	primary = tf.NewFace()
	if c.Fallback == nil {
		return primary, primary, func() { primary.Close() }
	}
	fallback = c.Fallback.NewFace()
	return primary, fallback, func() {
		primary.Close()
		fallback.Close()
	}
}

// ConvertToImage renders img as glyphs on a canvas with the same size as
// img. BlackAndWhite mode always uses an opaque white background.
func (c *Converter) ConvertToImage(img image.Image) (*image.NRGBA, error) {
	cells, err := c.ConvertToGrid(img)
	if err != nil {
		return nil, fmt.Errorf("convert to image: %w", err)
	}

	bg := c.Background
	if c.ColorMode == ColorModeBlackAndWhite {
		bg = color.White
	}

	primary, fallback, closeFaces := c.faces()
	defer closeFaces()

	b := img.Bounds()
	return composeCells(cells, b.Dx(), b.Dy(), bg, primary, fallback), nil
}
