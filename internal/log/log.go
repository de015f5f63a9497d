// Package log is a small levelled logger writing to stderr. Level tags are
// colored when stderr is a terminal.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"
)

// Level constants matching slog levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var level atomic.Int64

var (
	mu    sync.Mutex
	out   io.Writer = os.Stderr
	color bool
)

var levelTags = [2]map[slog.Level]string{
	// uncolored
	{
		LevelDebug: "[DEBUG]",
		LevelInfo:  "[INFO]",
		LevelWarn:  "[WARN]",
		LevelError: "[ERROR]",
	},
	// colored
	{
		LevelDebug: "\033[37m[DEBUG]\033[0m",
		LevelInfo:  "\033[34m[INFO]\033[0m",
		LevelWarn:  "\033[33m[WARN]\033[0m",
		LevelError: "\033[31m[ERROR]\033[0m",
	},
}

func init() {
	level.Store(int64(LevelInfo))
	fd := os.Stderr.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		out = colorable.NewColorableStderr()
		color = true
	}
}

// SetLevel sets the global log level.
func SetLevel(l slog.Level) {
	level.Store(int64(l))
}

// GetLevel returns the current log level.
func GetLevel() slog.Level {
	return slog.Level(level.Load())
}

// SetOutput redirects log output to w, without color.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	color = false
}

func logf(l slog.Level, format string, args ...any) {
	if slog.Level(level.Load()) > l {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	tags := levelTags[0]
	if color {
		tags = levelTags[1]
	}
	fmt.Fprintf(out, tags[l]+" "+format+"\n", args...)
}

// Debugf logs a debug message if the level allows it.
func Debugf(format string, args ...any) {
	logf(LevelDebug, format, args...)
}

// Infof logs an info message if the level allows it.
func Infof(format string, args ...any) {
	logf(LevelInfo, format, args...)
}

// Warnf logs a warning message if the level allows it.
func Warnf(format string, args ...any) {
	logf(LevelWarn, format, args...)
}

// Errorf logs an error message if the level allows it.
func Errorf(format string, args ...any) {
	logf(LevelError, format, args...)
}
