package config

import (
	"fmt"
	"os"

	"github.com/san-kum/gridhero/internal/linefield"
	"github.com/san-kum/gridhero/internal/render"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFPS    = 60
	DefaultWidth  = 960.0
	DefaultHeight = 600.0
	DefaultDPR    = 1.0
	MaxFPS        = 240
)

type Config struct {
	CellSize         float64       `yaml:"cell_size"`
	StreakLength     float64       `yaml:"streak_length"`
	Speed            float64       `yaml:"speed"`
	MaxDelay         float64       `yaml:"max_delay_ms"`
	Theme            string        `yaml:"theme"`
	Palette          PaletteConfig `yaml:"palette"`
	FPS              int           `yaml:"fps"`
	DevicePixelRatio float64       `yaml:"device_pixel_ratio"`
	Width            float64       `yaml:"width"`
	Height           float64       `yaml:"height"`
	Seed             int64         `yaml:"seed"`
	Overlay          OverlayConfig `yaml:"overlay"`
}

// PaletteConfig overrides individual theme tones with hex colors.
type PaletteConfig struct {
	Top    string `yaml:"top,omitempty"`
	Bottom string `yaml:"bottom,omitempty"`
	Accent string `yaml:"accent,omitempty"`
}

// OverlayConfig is the content centered above the animation.
type OverlayConfig struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
}

func DefaultConfig() *Config {
	return &Config{
		CellSize:         linefield.DefaultCellSize,
		StreakLength:     linefield.DefaultStreakLength,
		Speed:            linefield.DefaultSpeed,
		MaxDelay:         linefield.DefaultMaxDelay,
		Theme:            render.DefaultTheme.Name,
		FPS:              DefaultFPS,
		DevicePixelRatio: DefaultDPR,
		Width:            DefaultWidth,
		Height:           DefaultHeight,
		Overlay: OverlayConfig{
			Title:    "gridhero",
			Subtitle: "flowing grid lines",
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto reads path over a copy of base, so keys missing from the file keep
// the base values.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.CellSize <= 0:
		return ErrCellSize
	case c.Speed <= 0:
		return ErrSpeed
	case c.StreakLength <= 0:
		return ErrStreakLength
	case c.MaxDelay < 0:
		return ErrMaxDelay
	case c.FPS < 1 || c.FPS > MaxFPS:
		return fmt.Errorf("%w (got %d)", ErrFPS, c.FPS)
	case c.DevicePixelRatio <= 0:
		return ErrPixelRatio
	case c.Width < 0 || c.Height < 0:
		return ErrSize
	}
	_, err := c.ResolvePalette()
	return err
}

// ResolvePalette returns the theme palette with any configured overrides.
func (c *Config) ResolvePalette() (render.Palette, error) {
	p, ok := render.GetTheme(c.Theme)
	if !ok {
		return p, fmt.Errorf("%w: %s (available: %v)", ErrUnknownTheme, c.Theme, render.ThemeNames())
	}
	return p.Override(c.Palette.Top, c.Palette.Bottom, c.Palette.Accent)
}

func (c *Config) FieldOptions() linefield.Options {
	return linefield.Options{
		CellSize: c.CellSize,
		Speed:    c.Speed,
		MaxDelay: c.MaxDelay,
	}
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
