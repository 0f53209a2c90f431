// Package config loads the tilebloom settings from YAML. Every field falls
// back to the stock scene when absent.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/plus3/tilebloom/bloom"
	"github.com/plus3/tilebloom/scene"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Window      WindowConfig     `yaml:"window"`
	Grid        GridConfig       `yaml:"grid"`
	Palette     []Color          `yaml:"palette"`
	Jitter      JitterConfig     `yaml:"jitter"`
	Bloom       BloomConfig      `yaml:"bloom"`
	Screenshots ScreenshotConfig `yaml:"screenshots"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type GridConfig struct {
	Columns int     `yaml:"columns"`
	Rows    int     `yaml:"rows"`
	Margin  float32 `yaml:"margin"`
}

type JitterConfig struct {
	Divisor float32 `yaml:"divisor"`
}

// BloomConfig is the camera and its starting bloom. Divisor scales how fast
// intensity and low-frequency boost grow each frame.
type BloomConfig struct {
	HDR                        bool    `yaml:"hdr"`
	Tonemapping                string  `yaml:"tonemapping"`
	Intensity                  float32 `yaml:"intensity"`
	LowFrequencyBoost          float32 `yaml:"low_frequency_boost"`
	LowFrequencyBoostCurvature float32 `yaml:"low_frequency_boost_curvature"`
	HighPassFrequency          float32 `yaml:"high_pass_frequency"`
	Threshold                  float32 `yaml:"threshold"`
	ThresholdSoftness          float32 `yaml:"threshold_softness"`
	CompositeMode              string  `yaml:"composite_mode"`
	Divisor                    float32 `yaml:"divisor"`
}

type ScreenshotConfig struct {
	Dir     string `yaml:"dir"`
	Limit   uint64 `yaml:"limit"`
	Workers int    `yaml:"workers"`
}

// Default returns the stock scene.
func Default() *Config {
	b := bloom.DefaultSettings()
	palette := scene.DefaultPalette()
	colors := make([]Color, len(palette))
	for i, c := range palette {
		colors[i] = Color(c)
	}
	grid := scene.DefaultGridSpec()

	return &Config{
		Window:  WindowConfig{Width: 720, Height: 1280, Title: "tilebloom"},
		Grid:    GridConfig{Columns: grid.Columns, Rows: grid.Rows, Margin: grid.Margin},
		Palette: colors,
		Jitter:  JitterConfig{Divisor: scene.DefaultJitterDivisor},
		Bloom: BloomConfig{
			HDR:                        true,
			Tonemapping:                bloom.TonemappingAcesFitted.String(),
			Intensity:                  b.Intensity,
			LowFrequencyBoost:          b.LowFrequencyBoost,
			LowFrequencyBoostCurvature: b.LowFrequencyBoostCurvature,
			HighPassFrequency:          b.HighPassFrequency,
			Threshold:                  b.Prefilter.Threshold,
			ThresholdSoftness:          b.Prefilter.ThresholdSoftness,
			CompositeMode:              b.CompositeMode.String(),
			Divisor:                    scene.DefaultBloomDivisor,
		},
		Screenshots: ScreenshotConfig{
			Dir:     scene.DefaultScreenshotDir,
			Limit:   scene.DefaultScreenshotLimit,
			Workers: 4,
		},
	}
}

// Load reads path over the defaults and validates the result. Unknown keys
// are rejected.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode is Load for an already opened reader.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks ranges and enum names.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return invalid("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	case c.Grid.Columns <= 0 || c.Grid.Rows <= 0:
		return invalid("grid %dx%d must be positive", c.Grid.Columns, c.Grid.Rows)
	case c.Grid.Margin < 0:
		return invalid("grid margin %v is negative", c.Grid.Margin)
	case len(c.Palette) == 0:
		return invalid("palette is empty")
	case c.Jitter.Divisor == 0:
		return invalid("jitter divisor is zero")
	case c.Bloom.Divisor == 0:
		return invalid("bloom divisor is zero")
	case c.Bloom.LowFrequencyBoostCurvature < 0 || c.Bloom.LowFrequencyBoostCurvature > 1:
		return invalid("low_frequency_boost_curvature %v outside [0,1]", c.Bloom.LowFrequencyBoostCurvature)
	case c.Bloom.HighPassFrequency <= 0 || c.Bloom.HighPassFrequency > 1:
		return invalid("high_pass_frequency %v outside (0,1]", c.Bloom.HighPassFrequency)
	case c.Screenshots.Dir == "":
		return invalid("screenshots.dir is empty")
	case c.Screenshots.Workers <= 0:
		return invalid("screenshots.workers must be positive")
	}

	if _, err := bloom.ParseTonemapping(c.Bloom.Tonemapping); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := bloom.ParseCompositeMode(c.Bloom.CompositeMode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Options converts the config into the scene's options. c must be valid.
func (c *Config) Options(rand scene.Source) scene.Options {
	curve, _ := bloom.ParseTonemapping(c.Bloom.Tonemapping)
	mode, _ := bloom.ParseCompositeMode(c.Bloom.CompositeMode)

	palette := make([]color.RGBA, len(c.Palette))
	for i, p := range c.Palette {
		palette[i] = color.RGBA(p)
	}

	opts := scene.DefaultOptions(rand)
	opts.Grid = scene.GridSpec{Columns: c.Grid.Columns, Rows: c.Grid.Rows, Margin: c.Grid.Margin}
	opts.Palette = palette
	opts.Camera = scene.Camera{HDR: c.Bloom.HDR, Tonemapping: curve}
	opts.Bloom = bloom.Settings{
		Intensity:                  c.Bloom.Intensity,
		LowFrequencyBoost:          c.Bloom.LowFrequencyBoost,
		LowFrequencyBoostCurvature: c.Bloom.LowFrequencyBoostCurvature,
		HighPassFrequency:          c.Bloom.HighPassFrequency,
		Prefilter: bloom.PrefilterSettings{
			Threshold:         c.Bloom.Threshold,
			ThresholdSoftness: c.Bloom.ThresholdSoftness,
		},
		CompositeMode: mode,
	}
	opts.JitterDivisor = c.Jitter.Divisor
	opts.BloomDivisor = c.Bloom.Divisor
	opts.ScreenshotDir = c.Screenshots.Dir
	opts.ScreenshotLimit = c.Screenshots.Limit
	return opts
}

// Color is an opaque colour written as "#rrggbb" in YAML.
type Color color.RGBA

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Color) MarshalYAML() (any, error) {
	return c.String(), nil
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor accepts "#rrggbb" or "rrggbb".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid colour %q: want #rrggbb", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return Color{R: r, G: g, B: b, A: 255}, nil
}
