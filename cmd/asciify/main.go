package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/wbrown/asciify"
	"github.com/wbrown/asciify/imageutil"
	"github.com/wbrown/asciify/internal/config"
	"github.com/wbrown/asciify/internal/log"
)

func main() {
	inputFile := flag.String("input", "",
		"Path to the input image file (required)")
	outputFile := flag.String("output", "",
		"Path to save the output: .png, .jpg or .gif renders an image, "+
			"anything else text (if not specified, prints to stdout)")
	configFile := flag.String("config", "",
		"Path to a .toml or .yaml config file; flags override its values")
	columns := flag.Int("columns", 0,
		"Number of glyph columns (0 derives it from -cellsize, or the "+
			"terminal width when printing to a terminal)")
	cellSize := flag.Float64("cellsize", 12,
		"Width in pixels of one glyph cell")
	mode := flag.String("mode", "color",
		"Glyph coloring for image and ANSI output: bw, gray or color")
	metric := flag.String("metric", "luminance",
		"Glyph metric: luminance or color")
	palette := flag.String("palette", "",
		"Palette name or path to a JSON palette (Embedded: "+
			strings.Join(asciify.EmbeddedPalettes(), ", ")+")")
	invert := flag.Bool("invert", true,
		"Invert luminance so bright regions get dense glyphs")
	background := flag.String("bg", "transparent",
		"Background color: #rrggbb, white, black or transparent")
	fontPath := flag.String("font", "",
		"Path to a TTF file (default: built-in 7x13 bitmap font)")
	fontSize := flag.Float64("fontsize", 13,
		"Font size in pixels for -font")
	interpolation := flag.String("interpolation", "area",
		"Downscaling filter: area, linear, catmullrom or nearest")
	ansi := flag.Bool("ansi", false,
		"Emit 24-bit ANSI colored text (default: on when stdout is a terminal)")
	workers := flag.Int("workers", 4,
		"Maximum number of concurrent conversions")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	// Validate required flags
	if *inputFile == "" {
		fmt.Println("Please provide the image using the -input flag")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fatalf("Error loading config: %v", err)
		}
	}

	// Flags set on the command line override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "columns":
			cfg.Columns = *columns
		case "cellsize":
			cfg.CellSize = *cellSize
		case "mode":
			cfg.Mode = *mode
		case "metric":
			cfg.Metric = *metric
		case "palette":
			cfg.Palette = *palette
		case "invert":
			cfg.Invert = invert
		case "bg":
			cfg.Background = *background
		case "font":
			cfg.Font = *fontPath
		case "fontsize":
			cfg.FontSize = *fontSize
		case "interpolation":
			cfg.Interpolation = *interpolation
		case "ansi":
			cfg.ANSI = ansi
		case "workers":
			cfg.MaxWorkers = *workers
		case "v":
			cfg.Verbose = *verbose
		}
	})

	if cfg.Verbose {
		log.SetLevel(log.LevelDebug)
	}

	if err := run(*inputFile, *outputFile, cfg); err != nil {
		fatalf("%v", err)
	}
}

func fatalf(format string, args ...any) {
	log.Errorf(format, args...)
	os.Exit(1)
}

func run(inputFile, outputFile string, cfg config.Config) error {
	start := time.Now()

	img, err := imageutil.LoadImage(inputFile)
	if err != nil {
		return fmt.Errorf("error loading image: %w", err)
	}

	glyphMetric, err := buildMetric(cfg)
	if err != nil {
		return fmt.Errorf("error loading palette: %w", err)
	}

	opts, err := converterOptions(cfg, glyphMetric)
	if err != nil {
		return err
	}

	toTerminal := outputFile == "" && isatty.IsTerminal(os.Stdout.Fd())
	if toTerminal && cfg.Columns <= 0 {
		if cols := terminalColumns(glyphMetric); cols > 0 {
			opts = append(opts, asciify.WithColumns(min(cols, img.Width())))
		}
	}
	conv := asciify.NewConverter(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if outputFile != "" && imageutil.IsImagePath(outputFile) {
		warnUndrawable(conv)
		out, err := conv.ConvertToImageAsync(img, nil, nil).Wait(ctx)
		if err != nil {
			return fmt.Errorf("error converting image: %w", err)
		}
		if err := imageutil.SaveImage(out, outputFile); err != nil {
			return fmt.Errorf("error writing image: %w", err)
		}
		log.Infof("Image output written to %s in %v", outputFile,
			time.Since(start))
		return nil
	}

	useANSI := toTerminal
	if cfg.ANSI != nil {
		useANSI = *cfg.ANSI
	}

	var text string
	if useANSI {
		text, err = conv.ConvertToANSIAsync(img, nil, nil).Wait(ctx)
	} else {
		text, err = conv.ConvertToTextAsync(img, nil, nil).Wait(ctx)
	}
	if err != nil {
		return fmt.Errorf("error converting image: %w", err)
	}

	if outputFile == "" {
		fmt.Print(text)
		log.Debugf("Computation time: %v", time.Since(start))
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(text), 0644); err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}
	log.Infof("Output written to %s in %v", outputFile, time.Since(start))
	return nil
}

// warnUndrawable warns when the font draws none of the metric's glyphs,
// which leaves an image of only the background.
func warnUndrawable(conv *asciify.Converter) {
	drawable, total := conv.GlyphCoverage()
	switch {
	case total == 0:
	case drawable == 0:
		log.Warnf("The font has none of the %d palette glyphs; the image "+
			"will only show the background. Pass a -font that covers them", total)
	case drawable < total:
		log.Debugf("The font draws %d of %d palette glyphs", drawable, total)
	}
}

// buildMetric creates the glyph metric named by cfg.
func buildMetric(cfg config.Config) (asciify.GlyphMetric, error) {
	invert := true
	if cfg.Invert != nil {
		invert = *cfg.Invert
	}

	switch strings.ToLower(cfg.Metric) {
	case "", "luminance":
		if cfg.Palette == "" {
			return asciify.NewLuminanceMetric(asciify.DefaultLuminanceMapping,
				asciify.WithInvert(invert))
		}
		return asciify.LoadLuminancePalette(cfg.Palette, asciify.WithInvert(invert))
	case "color":
		if cfg.Palette == "" {
			return asciify.DefaultColorMetric(), nil
		}
		return asciify.LoadColorPalette(cfg.Palette)
	}
	return nil, fmt.Errorf("invalid metric %q, options are luminance or color",
		cfg.Metric)
}

// converterOptions translates cfg into converter options.
func converterOptions(
	cfg config.Config,
	glyphMetric asciify.GlyphMetric,
) ([]asciify.Option, error) {
	mode, err := asciify.ParseColorMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	bg, err := config.ParseColor(cfg.Background)
	if err != nil {
		return nil, err
	}
	interp, ok := imageutil.ParseInterpolation(cfg.Interpolation)
	if !ok {
		return nil, fmt.Errorf("invalid interpolation %q", cfg.Interpolation)
	}

	opts := []asciify.Option{
		asciify.WithMetric(glyphMetric),
		asciify.WithColorMode(mode),
		asciify.WithBackground(bg),
		asciify.WithInterpolation(interp),
		asciify.WithMaxWorkers(cfg.MaxWorkers),
	}
	if cfg.CellSize > 0 {
		opts = append(opts, asciify.WithCellSize(cfg.CellSize))
	}
	if cfg.Columns > 0 {
		opts = append(opts, asciify.WithColumns(cfg.Columns))
	}

	if cfg.Font != "" {
		tf, err := asciify.LoadTrueType(cfg.Font, cfg.FontSize)
		if err != nil {
			return nil, fmt.Errorf("error loading font: %w", err)
		}
		log.Debugf("Using font %q at %vpx", tf.Name(), tf.Size())
		opts = append(opts,
			asciify.WithFace(tf),
			asciify.WithFallbackFace(asciify.DefaultTypeface))
	}
	return opts, nil
}

// terminalColumns returns how many glyph columns fit the terminal. Each
// column prints a glyph followed by a space.
func terminalColumns(glyphMetric asciify.GlyphMetric) int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 0
	}
	return width / (maxGlyphWidth(glyphMetric) + 1)
}

// maxGlyphWidth returns the widest display width among the metric's
// glyphs, at least one cell.
func maxGlyphWidth(glyphMetric asciify.GlyphMetric) int {
	widest := 1
	for _, g := range asciify.PaletteGlyphs(glyphMetric) {
		widest = max(widest, runewidth.StringWidth(g))
	}
	return widest
}
