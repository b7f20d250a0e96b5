package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/orbfield/internal/particle"
	"github.com/san-kum/orbfield/internal/renderer"
)

const (
	DefaultWidth     = 1280.0
	DefaultHeight    = 720.0
	DefaultFrames    = 600
	DefaultRefreshHz = 60
	DefaultColor     = "#3b82f6"
	DefaultTheme     = "ocean"
)

type Config struct {
	Viewport  ViewportConfig `yaml:"viewport"`
	Particles ParticleConfig `yaml:"particles"`
	Links     LinkConfig     `yaml:"links"`
	Color     string         `yaml:"color"`
	Seed      int64          `yaml:"seed"`
	Frames    int            `yaml:"frames"`
	RefreshHz int            `yaml:"refresh_hz"`
	Theme     string         `yaml:"theme"`
}

type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type ParticleConfig struct {
	SmallCount int     `yaml:"small_count"`
	LargeCount int     `yaml:"large_count"`
	Breakpoint float64 `yaml:"breakpoint"`
}

type LinkConfig struct {
	Threshold float64 `yaml:"threshold"`
	Width     float64 `yaml:"width"`
}

func DefaultConfig() *Config {
	return &Config{
		Viewport: ViewportConfig{Width: DefaultWidth, Height: DefaultHeight},
		Particles: ParticleConfig{
			SmallCount: particle.DefaultSmallCount,
			LargeCount: particle.DefaultLargeCount,
			Breakpoint: particle.DefaultBreakpoint,
		},
		Links: LinkConfig{
			Threshold: particle.LinkThreshold,
			Width:     1,
		},
		Color:     DefaultColor,
		Frames:    DefaultFrames,
		RefreshHz: DefaultRefreshHz,
		Theme:     DefaultTheme,
	}
}

func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto reads path over a copy of base, so keys missing from the file
// keep the base values.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cp := *base
	cfg := &cp
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
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
	if err := particle.ValidateViewport(c.Viewport.Width, c.Viewport.Height); err != nil {
		return err
	}
	if c.Frames < 0 {
		return fmt.Errorf("%w: frames must not be negative, got %d", particle.ErrInvalidConfig, c.Frames)
	}
	if c.RefreshHz <= 0 {
		return fmt.Errorf("%w: refresh_hz must be positive, got %d", particle.ErrInvalidConfig, c.RefreshHz)
	}
	if _, err := ParseColor(c.Color); err != nil {
		return err
	}
	return c.RendererOptions().Validate()
}

// RendererOptions maps the config onto renderer options. An unparsable
// colour falls back to the default orb blue.
func (c *Config) RendererOptions() renderer.Options {
	opts := renderer.DefaultOptions()
	opts.Counts = particle.Counts{
		Small:      c.Particles.SmallCount,
		Large:      c.Particles.LargeCount,
		Breakpoint: c.Particles.Breakpoint,
	}
	opts.LinkThreshold = c.Links.Threshold
	opts.LinkWidth = c.Links.Width
	if col, err := ParseColor(c.Color); err == nil {
		opts.Color = col
	}
	return opts
}

// ParseColor accepts "#rrggbb" or "rrggbb".
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("%w: color %q is not #rrggbb", particle.ErrInvalidConfig, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: color %q: %v", particle.ErrInvalidConfig, s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
