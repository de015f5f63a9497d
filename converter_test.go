package asciify

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/wbrown/asciify/imageutil"
)

var (
	white = imageutil.RGB{R: 255, G: 255, B: 255}
	black = imageutil.RGB{}
)

// checkerboard2x2 is the 2x2 image [white, black; black, white].
func checkerboard2x2() *imageutil.Image {
	return imageutil.CreateImageFromRows([][]imageutil.RGB{
		{white, black},
		{black, white},
	})
}

func TestConverterDefaults(t *testing.T) {
	t.Parallel()

	c := NewConverter()
	if c.CellSize != 12 {
		t.Errorf("Expected CellSize=12, got %v", c.CellSize)
	}
	if c.Columns != 0 {
		t.Errorf("Expected Columns=0, got %d", c.Columns)
	}
	if c.ColorMode != ColorModeColor {
		t.Errorf("Expected ColorModeColor, got %v", c.ColorMode)
	}
	if !isTransparent(c.Background) {
		t.Errorf("Expected transparent background, got %v", c.Background)
	}
	lum, ok := c.Metric.(*LuminanceMetric)
	if !ok || !lum.Inverted() {
		t.Errorf("Expected inverted LuminanceMetric, got %T", c.Metric)
	}
	if c.Interpolation != imageutil.InterpolationArea {
		t.Errorf("Expected area interpolation, got %v", c.Interpolation)
	}
}

func TestConverterOptions(t *testing.T) {
	t.Parallel()

	m := DefaultColorMetric()
	c := NewConverter(
		WithCellSize(8),
		WithColumns(20),
		WithBackground(color.Black),
		WithColorMode(ColorModeGrayScale),
		WithMetric(m),
		WithInterpolation(imageutil.InterpolationNearest),
		WithFallbackFace(DefaultTypeface),
	)
	if c.CellSize != 8 || c.Columns != 20 {
		t.Errorf("Unexpected size settings %v/%d", c.CellSize, c.Columns)
	}
	if c.Background != color.Black {
		t.Errorf("Unexpected background %v", c.Background)
	}
	if c.ColorMode != ColorModeGrayScale {
		t.Errorf("Unexpected mode %v", c.ColorMode)
	}
	if c.Metric != GlyphMetric(m) {
		t.Error("Metric option not applied")
	}
	if c.Interpolation != imageutil.InterpolationNearest {
		t.Errorf("Unexpected interpolation %v", c.Interpolation)
	}
	if c.Fallback == nil {
		t.Error("Fallback option not applied")
	}
}

func TestGridColumns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     []Option
		width    int
		expected int
	}{
		{"default cell size", nil, 120, 10},
		{"floored", nil, 131, 10},
		{"smaller than a cell", nil, 2, 0},
		{"custom cell size", []Option{WithCellSize(4)}, 120, 30},
		{"fixed columns", []Option{WithColumns(7)}, 120, 7},
		{"non-positive columns ignored", []Option{WithColumns(-1)}, 120, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConverter(tt.opts...)
			if got := c.GridColumns(tt.width); got != tt.expected {
				t.Errorf("GridColumns(%d) = %d, want %d", tt.width, got, tt.expected)
			}
		})
	}
}

func TestConvertToTextCheckerboard(t *testing.T) {
	t.Parallel()

	inverted := NewConverter()
	got, err := inverted.ConvertToText(checkerboard2x2())
	if err != nil {
		t.Fatal(err)
	}
	if want := "@   \n  @ \n"; got != want {
		t.Errorf("Inverted: got %q, want %q", got, want)
	}

	plain, err := NewLuminanceMetric(DefaultLuminanceMapping, WithInvert(false))
	if err != nil {
		t.Fatal(err)
	}
	got, err = NewConverter(WithMetric(plain)).ConvertToText(checkerboard2x2())
	if err != nil {
		t.Fatal(err)
	}
	if want := "  @ \n@   \n"; got != want {
		t.Errorf("Not inverted: got %q, want %q", got, want)
	}
}

func TestConvertToTextOrientation(t *testing.T) {
	t.Parallel()

	// Rows and columns must not be swapped
	gray := imageutil.RGB{R: 166, G: 166, B: 166}
	img := imageutil.CreateImageFromRows([][]imageutil.RGB{
		{white, black},
		{gray, white},
	})
	plain, err := NewLuminanceMetric(DefaultLuminanceMapping, WithInvert(false))
	if err != nil {
		t.Fatal(err)
	}
	got, err := NewConverter(WithMetric(plain)).ConvertToText(img)
	if err != nil {
		t.Fatal(err)
	}
	if want := "  @ \n<   \n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConvertToTextShape(t *testing.T) {
	t.Parallel()

	c := NewConverter()
	text, err := c.ConvertToText(imageutil.CreateGradientImage(120, 60))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(text, "\n") {
		t.Fatal("Text should end with a newline")
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("Expected 5 rows, got %d", len(lines))
	}
	for i, line := range lines {
		if n := utf8.RuneCountInString(line); n != 20 {
			t.Errorf("Row %d has %d runes, want 20: %q", i, n, line)
		}
	}
	// A horizontal gradient gives identical rows with distinct ends
	for i, line := range lines[1:] {
		if line != lines[0] {
			t.Errorf("Row %d = %q, want %q", i+1, line, lines[0])
		}
	}
	if lines[0][0] == lines[0][18] {
		t.Errorf("Gradient ends map to the same glyph: %q", lines[0])
	}
}

func TestConvertToTextDeterministic(t *testing.T) {
	t.Parallel()

	c := NewConverter(WithColumns(16))
	img := imageutil.CreateColorBarsImage(64, 32)
	first, err := c.ConvertToText(img)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := c.ConvertToText(img)
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("Run %d differs:\n%s\nvs\n%s", i, again, first)
		}
	}
}

func TestConvertToGridColors(t *testing.T) {
	t.Parallel()

	img := imageutil.CreateImageFromRows([][]imageutil.RGB{
		{white, {R: 200, G: 40, B: 10}},
	})
	opaqueBlack := color.NRGBA{A: 255}

	t.Run("color", func(t *testing.T) {
		cells, err := NewConverter(WithColorMode(ColorModeColor)).ConvertToGrid(img)
		if err != nil {
			t.Fatal(err)
		}
		if got := cells[0][1].Color; got != (color.NRGBA{200, 40, 10, 255}) {
			t.Errorf("Color mode cell color = %v", got)
		}
		if cells[0][0].Glyph != "@" {
			t.Errorf("White should map to %q, got %q", "@", cells[0][0].Glyph)
		}
	})

	t.Run("grayscale inverted", func(t *testing.T) {
		cells, err := NewConverter(WithColorMode(ColorModeGrayScale)).ConvertToGrid(img)
		if err != nil {
			t.Fatal(err)
		}
		// White has luminance 1, inverted to 0
		if got := cells[0][0].Color; got != opaqueBlack {
			t.Errorf("Gray cell color = %v, want %v", got, opaqueBlack)
		}
	})

	t.Run("grayscale plain", func(t *testing.T) {
		plain, _ := NewLuminanceMetric(DefaultLuminanceMapping)
		cells, err := NewConverter(
			WithColorMode(ColorModeGrayScale), WithMetric(plain),
		).ConvertToGrid(img)
		if err != nil {
			t.Fatal(err)
		}
		if got := cells[0][0].Color; got != (color.NRGBA{255, 255, 255, 255}) {
			t.Errorf("Gray cell color = %v, want white", got)
		}
	})

	t.Run("grayscale color metric", func(t *testing.T) {
		cells, err := NewConverter(
			WithColorMode(ColorModeGrayScale), WithMetric(DefaultColorMetric()),
		).ConvertToGrid(img)
		if err != nil {
			t.Fatal(err)
		}
		if cells[0][0].Glyph != "🐇" {
			t.Errorf("Expected color metric glyph, got %q", cells[0][0].Glyph)
		}
		if got := cells[0][0].Color; got != (color.NRGBA{255, 255, 255, 255}) {
			t.Errorf("Gray cell color = %v, want white", got)
		}
	})

	t.Run("black and white", func(t *testing.T) {
		cells, err := NewConverter(
			WithColorMode(ColorModeBlackAndWhite), WithMetric(DefaultColorMetric()),
		).ConvertToGrid(img)
		if err != nil {
			t.Fatal(err)
		}
		// A color metric falls back to the default luminance metric
		if cells[0][0].Glyph != "@" {
			t.Errorf("Expected luminance glyph, got %q", cells[0][0].Glyph)
		}
		for _, cell := range cells[0] {
			if cell.Color != opaqueBlack {
				t.Errorf("BW cell color = %v, want black", cell.Color)
			}
		}
	})
}

func TestConvertToImageSize(t *testing.T) {
	t.Parallel()

	img := imageutil.CreateColorBarsImage(130, 70)
	for _, mode := range []ColorMode{
		ColorModeBlackAndWhite, ColorModeGrayScale, ColorModeColor,
	} {
		out, err := NewConverter(WithColorMode(mode)).ConvertToImage(img)
		if err != nil {
			t.Fatalf("%v: %v", mode, err)
		}
		if out.Bounds() != image.Rect(0, 0, 130, 70) {
			t.Errorf("%v: output bounds %v, want 130x70", mode, out.Bounds())
		}
	}
}

func TestConvertToImageBackground(t *testing.T) {
	t.Parallel()

	// Black maps to a space under the inverted default metric, so nothing
	// but the background is drawn
	img := imageutil.CreateSolidImage(48, 48, black)

	tests := []struct {
		name string
		opts []Option
		want color.NRGBA
	}{
		{"transparent", nil, color.NRGBA{}},
		{"opaque", []Option{WithBackground(color.NRGBA{255, 0, 0, 255})},
			color.NRGBA{255, 0, 0, 255}},
		{"black and white forces white", []Option{
			WithColorMode(ColorModeBlackAndWhite),
			WithBackground(color.NRGBA{0, 0, 255, 255}),
		}, color.NRGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewConverter(tt.opts...).ConvertToImage(img)
			if err != nil {
				t.Fatal(err)
			}
			for _, p := range []image.Point{{0, 0}, {47, 47}, {20, 30}} {
				if got := out.NRGBAAt(p.X, p.Y); got != tt.want {
					t.Errorf("Pixel %v = %v, want %v", p, got, tt.want)
				}
			}
		})
	}
}

func TestConvertToImageDrawsGlyphs(t *testing.T) {
	t.Parallel()

	// White maps to "@" under the inverted default metric
	img := imageutil.CreateSolidImage(48, 48, white)
	out, err := NewConverter(WithColorMode(ColorModeBlackAndWhite)).ConvertToImage(img)
	if err != nil {
		t.Fatal(err)
	}
	dark := 0
	for y := 0; y < 48; y++ {
		for x := 0; x < 48; x++ {
			if c := out.NRGBAAt(x, y); c.R < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("Expected glyph pixels on the canvas")
	}
	if dark > 48*48/2 {
		t.Errorf("Too many glyph pixels: %d", dark)
	}
}

func TestConvertToImageMissingGlyphs(t *testing.T) {
	t.Parallel()

	// The bitmap face has no emoji; cells stay background
	img := imageutil.CreateSolidImage(24, 24, white)
	c := NewConverter(
		WithMetric(DefaultColorMetric()),
		WithBackground(color.Black),
	)
	out, err := c.ConvertToImage(img)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 24; y++ {
		for x := 0; x < 24; x++ {
			if got := out.NRGBAAt(x, y); got != (color.NRGBA{0, 0, 0, 255}) {
				t.Fatalf("Pixel (%d,%d) = %v, want background", x, y, got)
			}
		}
	}
}

func TestConvertToTextIgnoresColorMode(t *testing.T) {
	t.Parallel()

	img := imageutil.CreateColorBarsImage(64, 32)
	metric := DefaultColorMetric()
	colored, err := NewConverter(WithColumns(8), WithMetric(metric)).ConvertToText(img)
	if err != nil {
		t.Fatal(err)
	}

	bw := NewConverter(
		WithColumns(8),
		WithMetric(metric),
		WithColorMode(ColorModeBlackAndWhite),
	)
	text, err := bw.ConvertToText(img)
	if err != nil {
		t.Fatal(err)
	}
	if text != colored {
		t.Errorf("BW text differs from color text:\n%s\nvs\n%s", text, colored)
	}

	// ANSI output draws with the luminance fallback instead
	ansi, err := bw.ConvertToANSI(img)
	if err != nil {
		t.Fatal(err)
	}
	lum, err := NewConverter(WithColumns(8)).ConvertToText(img)
	if err != nil {
		t.Fatal(err)
	}
	if got := stripANSI(ansi); got != lum {
		t.Errorf("BW ANSI glyphs:\n%s\nwant luminance glyphs:\n%s", got, lum)
	}
}

func TestGlyphCoverage(t *testing.T) {
	t.Parallel()

	lumGlyphs := len(DefaultLuminanceMetric().Entries())
	goRegular, err := ParseTrueType(goregular.TTF, 13)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name          string
		opts          []Option
		drawable, all int
	}{
		{"default", nil, lumGlyphs, lumGlyphs},
		{"emoji on bitmap face", []Option{WithMetric(DefaultColorMetric())}, 0, 9},
		{"black and white falls back to luminance", []Option{
			WithMetric(DefaultColorMetric()),
			WithColorMode(ColorModeBlackAndWhite),
		}, lumGlyphs, lumGlyphs},
		{"ascii palette with fallback", []Option{
			WithMetric(mustColorMetric(t, []ColorEntry{
				{Color: color.NRGBA{A: 255}, Glyph: "#"},
				{Color: color.NRGBA{255, 255, 255, 255}, Glyph: "é"},
				{Color: color.NRGBA{255, 0, 0, 255}, Glyph: "🐇"},
			})),
			WithFallbackFace(goRegular),
		}, 2, 3},
		{"opaque metric", []Option{WithMetric(panicMetric{})}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drawable, all := NewConverter(tt.opts...).GlyphCoverage()
			if drawable != tt.drawable || all != tt.all {
				t.Errorf("GlyphCoverage() = %d/%d, want %d/%d",
					drawable, all, tt.drawable, tt.all)
			}
		})
	}
}

func mustColorMetric(t *testing.T, entries []ColorEntry) *ColorMetric {
	t.Helper()
	m, err := NewColorMetric(entries)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestConvertInvalidImage(t *testing.T) {
	t.Parallel()

	c := NewConverter()
	empty := image.NewNRGBA(image.Rect(0, 0, 0, 0))

	if _, err := c.ConvertToText(nil); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("ConvertToText(nil): expected ErrInvalidImage, got %v", err)
	}
	if _, err := c.ConvertToGrid(empty); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("ConvertToGrid(empty): expected ErrInvalidImage, got %v", err)
	}
	if out, err := c.ConvertToImage(empty); !errors.Is(err, ErrInvalidImage) || out != nil {
		t.Errorf("ConvertToImage(empty): expected ErrInvalidImage and no output, got %v", err)
	}
}

func TestConverterConcurrentUse(t *testing.T) {
	t.Parallel()

	c := NewConverter(WithColumns(12), WithMetric(DefaultColorMetric()))
	img := imageutil.CreateColorBarsImage(96, 48)
	want, err := c.ConvertToText(img)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	results := make([]string, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.ConvertToText(img)
			if errs[i] == nil {
				_, errs[i] = c.ConvertToImage(img)
			}
		}(i)
	}
	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("Goroutine %d failed: %v", i, errs[i])
		}
		if results[i] != want {
			t.Errorf("Goroutine %d produced different text", i)
		}
	}
}

func TestParseColorMode(t *testing.T) {
	t.Parallel()

	for _, mode := range []ColorMode{
		ColorModeBlackAndWhite, ColorModeGrayScale, ColorModeColor,
	} {
		got, err := ParseColorMode(mode.String())
		if err != nil || got != mode {
			t.Errorf("ParseColorMode(%q) = %v, %v", mode.String(), got, err)
		}
	}
	if _, err := ParseColorMode("sepia"); err == nil {
		t.Error("Expected error for unknown mode")
	}
}
