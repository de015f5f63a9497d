package asciify

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

const (
	// ESC is the escape character that starts every ANSI sequence.
	ESC = "\u001b"
	// ansiReset clears all colors.
	ansiReset = ESC + "[0m"
)

// ConvertToANSI converts img into text colored with 24-bit ANSI escapes.
// The layout matches ConvertToText; each glyph is drawn in its cell color
// and, when the converter has an opaque background, on that background.
func (c *Converter) ConvertToANSI(img image.Image) (string, error) {
	cells, err := c.ConvertToGrid(img)
	if err != nil {
		return "", fmt.Errorf("convert to ansi: %w", err)
	}

	bg := c.Background
	if c.ColorMode == ColorModeBlackAndWhite {
		bg = color.White
	}
	return RenderToANSI(cells, bg), nil
}

// RenderToANSI renders a grid of render cells to an ANSI string. Adjacent
// cells sharing a color share one escape sequence, and every row ends with
// a reset and a newline. A nil or transparent bg leaves the terminal
// background alone.
func RenderToANSI(cells [][]RenderCell, bg color.Color) string {
	var sb strings.Builder
	bgCode := ""
	if !isTransparent(bg) {
		bgCode = backgroundCode(color.NRGBAModel.Convert(bg).(color.NRGBA))
	}

	for _, row := range cells {
		var run strings.Builder
		var current color.NRGBA
		for i, cell := range row {
			// If the color changes, write the current run and start a new one
			if i > 0 && cell.Color != current {
				sb.WriteString(formatANSICode(current, bgCode, run.String()))
				run.Reset()
			}
			current = cell.Color
			run.WriteString(cell.Glyph)
			run.WriteByte(' ')
		}
		if run.Len() > 0 {
			sb.WriteString(formatANSICode(current, bgCode, run.String()))
		}
		// Reset colors at the end of each line and add a newline
		sb.WriteString(ansiReset)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// formatANSICode prefixes text with the 24-bit foreground escape for fg,
// combined with an already formatted background code when one is given.
func formatANSICode(fg color.NRGBA, bgCode, text string) string {
	var code strings.Builder
	code.WriteString(ESC)
	code.WriteByte('[')
	code.WriteString(foregroundCode(fg))
	if bgCode != "" {
		code.WriteByte(';')
		code.WriteString(bgCode)
	}
	code.WriteByte('m')
	code.WriteString(text)
	return code.String()
}

func foregroundCode(c color.NRGBA) string {
	return fmt.Sprintf("38;2;%d;%d;%d", c.R, c.G, c.B)
}

func backgroundCode(c color.NRGBA) string {
	return fmt.Sprintf("48;2;%d;%d;%d", c.R, c.G, c.B)
}
