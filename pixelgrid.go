package asciify

import (
	"fmt"
	"image"
	"runtime"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
)

// PixelGrid is a row-major grid of normalized samples extracted from a
// decoded image. A grid is always fully populated.
type PixelGrid struct {
	width, height int
	cells         [][]Sample
}

// NewPixelGrid builds a grid from 8-bit RGBA bytes laid out row by row
// with no padding. Each channel is divided by 255; premultiplied and
// straight alpha buffers are treated the same way.
func NewPixelGrid(buf []byte, width, height int) (*PixelGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidImage,
			width, height)
	}
	if len(buf) != width*height*4 {
		return nil, fmt.Errorf("%w: buffer holds %d bytes, %dx%d needs %d",
			ErrInvalidImage, len(buf), width, height, width*height*4)
	}

	cells := make([][]Sample, height)
	for y := 0; y < height; y++ {
		row := make([]Sample, width)
		off := y * width * 4
		for x := 0; x < width; x++ {
			i := off + x*4
			row[x] = SampleFromBytes(buf[i], buf[i+1], buf[i+2], buf[i+3])
		}
		cells[y] = row
	}
	return &PixelGrid{width: width, height: height, cells: cells}, nil
}

// PixelGridFromImage extracts a grid from any image. The image is first
// flattened into a tightly packed straight alpha NRGBA buffer.
func PixelGridFromImage(img image.Image) (*PixelGrid, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty bounds %v", ErrInvalidImage, b)
	}
	nrgba := imaging.Clone(img)
	return NewPixelGrid(nrgba.Pix, b.Dx(), b.Dy())
}

// Width returns the number of columns.
func (g *PixelGrid) Width() int { return g.width }

// Height returns the number of rows.
func (g *PixelGrid) Height() int { return g.height }

// At returns the sample at (row, col).
func (g *PixelGrid) At(row, col int) (Sample, error) {
	if row < 0 || row >= g.height || col < 0 || col >= g.width {
		return Sample{}, fmt.Errorf("%w: (%d,%d) outside %dx%d grid",
			ErrIndexOutOfRange, row, col, g.height, g.width)
	}
	return g.cells[row][col], nil
}

// MapGrid applies f to every sample and returns a grid of results with the
// same shape. Rows are processed concurrently; f must be a pure function
// of its sample. A panic in f is re-raised on the calling goroutine.
func MapGrid[T any](g *PixelGrid, f func(Sample) T) [][]T {
	out := make([][]T, g.height)

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for y := 0; y < g.height; y++ {
		y := y
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = rowPanic{value: r}
				}
			}()
			src := g.cells[y]
			row := make([]T, len(src))
			for x, s := range src {
				row[x] = f(s)
			}
			out[y] = row
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		panic(err.(rowPanic).value)
	}
	return out
}

// rowPanic carries a panic out of a row worker.
type rowPanic struct {
	value any
}

func (p rowPanic) Error() string {
	return fmt.Sprintf("panic in row worker: %v", p.value)
}
