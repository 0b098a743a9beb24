// Package config loads scene settings from TOML or YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a config file encoding.
type Format string

const (
	TOML Format = "toml"
	YAML Format = "yaml"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid scene config")

// Scene holds the settings of a scene graph.
type Scene struct {
	// Width and Height are the viewport size in pixels.
	Width  float32 `toml:"width" yaml:"width"`
	Height float32 `toml:"height" yaml:"height"`
	// StencilBits is the number of stencil bit-planes available for nested
	// clipping. Deeper nesting is reported as an overflow.
	StencilBits int `toml:"stencil_bits" yaml:"stencil_bits"`
	// DamageTileSize aligns damage rectangles to a grid of this many pixels.
	// Values of 1 or less disable alignment.
	DamageTileSize float32 `toml:"damage_tile_size" yaml:"damage_tile_size"`
	// MaxDamageRects is the number of damage rectangles above which they
	// collapse into one bounding rectangle.
	MaxDamageRects int `toml:"max_damage_rects" yaml:"max_damage_rects"`
	// PartialUpdate lets presenters redraw only damaged areas.
	PartialUpdate bool `toml:"partial_update" yaml:"partial_update"`
	// Cull skips planar nodes outside the viewport or their clip area.
	Cull bool `toml:"cull" yaml:"cull"`
	// Debug enables per-tick timing logs and tree sanity warnings.
	Debug bool `toml:"debug" yaml:"debug"`
	// LogLevel is a slog level name: debug, info, warn or error.
	LogLevel string `toml:"log_level" yaml:"log_level"`
	// TPS is the tick rate used by headless and windowed runners.
	TPS int `toml:"tps" yaml:"tps"`
}

// Default returns the settings used when no file is given.
func Default() Scene {
	return Scene{
		Width:          480,
		Height:         800,
		StencilBits:    8,
		DamageTileSize: 16,
		MaxDamageRects: 8,
		PartialUpdate:  true,
		Cull:           true,
		LogLevel:       "warn",
		TPS:            60,
	}
}

// Load reads a config file. The format is chosen by extension: .toml, or
// .yaml / .yml. Fields missing from the file keep their Default value.
func Load(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, fmt.Errorf("config: %w", err)
	}
	format, err := formatOf(path)
	if err != nil {
		return Scene{}, err
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return Scene{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func formatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return "", fmt.Errorf("config: %s: unknown file extension", path)
}

// Parse decodes data in the given format on top of Default and validates
// the result. Unknown keys are rejected.
func Parse(data []byte, format Format) (Scene, error) {
	cfg := Default()
	switch format {
	case TOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Scene{}, fmt.Errorf("decode toml: %w", err)
		}
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Scene{}, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return Scene{}, fmt.Errorf("unknown format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return Scene{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Scene) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: viewport %gx%g", ErrInvalid, c.Width, c.Height)
	case c.StencilBits < 0 || c.StencilBits > 32:
		return fmt.Errorf("%w: stencil_bits %d not in [0,32]", ErrInvalid, c.StencilBits)
	case c.DamageTileSize < 0:
		return fmt.Errorf("%w: damage_tile_size %g", ErrInvalid, c.DamageTileSize)
	case c.MaxDamageRects < 1:
		return fmt.Errorf("%w: max_damage_rects %d", ErrInvalid, c.MaxDamageRects)
	case c.TPS < 0:
		return fmt.Errorf("%w: tps %d", ErrInvalid, c.TPS)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns LogLevel as a slog level. An empty name is slog.LevelWarn.
func (c Scene) Level() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return l, nil
}

// Marshal encodes the settings in the given format.
func (c Scene) Marshal(format Format) ([]byte, error) {
	switch format {
	case TOML:
		return toml.Marshal(c)
	case YAML:
		return yaml.Marshal(c)
	}
	return nil, fmt.Errorf("config: unknown format %q", format)
}
