// Package config loads asciify settings from TOML or YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Config mirrors the command line flags. Zero values mean "not set".
type Config struct {
	Columns       int     `toml:"columns" yaml:"columns"`
	CellSize      float64 `toml:"cellsize" yaml:"cellsize"`
	Mode          string  `toml:"mode" yaml:"mode"`
	Metric        string  `toml:"metric" yaml:"metric"`
	Palette       string  `toml:"palette" yaml:"palette"`
	Invert        *bool   `toml:"invert" yaml:"invert"`
	Background    string  `toml:"background" yaml:"background"`
	Font          string  `toml:"font" yaml:"font"`
	FontSize      float64 `toml:"fontsize" yaml:"fontsize"`
	Interpolation string  `toml:"interpolation" yaml:"interpolation"`
	ANSI          *bool   `toml:"ansi" yaml:"ansi"`
	MaxWorkers    int     `toml:"workers" yaml:"workers"`
	Verbose       bool    `toml:"verbose" yaml:"verbose"`
}

// Default returns the settings used when neither a file nor a flag sets
// a value.
func Default() Config {
	return Config{
		CellSize:      12,
		Mode:          "color",
		Metric:        "luminance",
		Background:    "transparent",
		FontSize:      13,
		Interpolation: "area",
		MaxWorkers:    4,
	}
}

// Load reads a config file, picking the decoder from its extension:
// .toml for TOML, .yaml or .yml for YAML. Keys the file leaves out keep
// their Default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes config data in the format named by ext.
func Parse(data []byte, ext string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
		if err != nil {
			return Config{}, fmt.Errorf("parse TOML config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("unrecognised config key %q",
				undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse YAML config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", ext)
	}
	return cfg, nil
}

// ParseColor parses a background color. It accepts #rgb and #rrggbb hex
// colors and the names "white" and "black"; "transparent", "clear" and the
// empty string mean no background.
func ParseColor(s string) (color.Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "transparent", "clear", "none":
		return color.Transparent, nil
	case "white":
		return color.White, nil
	case "black":
		return color.Black, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}, nil
}
