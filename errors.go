package asciify

import "errors"

var (
	// ErrInvalidImage is returned when a pixel buffer does not match its
	// declared dimensions.
	ErrInvalidImage = errors.New("invalid image")

	// ErrEmptyPalette is returned when a metric is built without entries.
	ErrEmptyPalette = errors.New("empty palette")

	// ErrIndexOutOfRange is returned when a grid is addressed outside
	// [0,height)x[0,width).
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrConversionPanic wraps a panic recovered from an asynchronous
	// conversion.
	ErrConversionPanic = errors.New("conversion panicked")
)
