package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/orbfield/internal/particle"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Particles.SmallCount != 8 || cfg.Particles.LargeCount != 15 {
		t.Errorf("unexpected counts %+v", cfg.Particles)
	}
	if cfg.Links.Threshold != 150 {
		t.Errorf("expected threshold 150, got %v", cfg.Links.Threshold)
	}
}

func TestRendererOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Color = "#ff0000"
	cfg.Particles.Breakpoint = 1000

	opts := cfg.RendererOptions()
	if opts.Color.R != 255 || opts.Color.G != 0 || opts.Color.B != 0 {
		t.Errorf("unexpected color %+v", opts.Color)
	}
	if opts.Counts.Breakpoint != 1000 {
		t.Errorf("expected breakpoint 1000, got %v", opts.Counts.Breakpoint)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"#3b82f6", true},
		{"3b82f6", true},
		{" #FFFFFF ", true},
		{"#fff", false},
		{"#zzzzzz", false},
		{"", false},
	}

	for _, tt := range tests {
		_, err := ParseColor(tt.in)
		if (err == nil) != tt.valid {
			t.Errorf("ParseColor(%q) err=%v, valid=%v", tt.in, err, tt.valid)
		}
	}

	c, _ := ParseColor(DefaultColor)
	if c.R != 59 || c.G != 130 || c.B != 246 {
		t.Errorf("default color parsed to %+v", c)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative width", func(c *Config) { c.Viewport.Width = -1 }},
		{"negative frames", func(c *Config) { c.Frames = -5 }},
		{"zero refresh", func(c *Config) { c.RefreshHz = 0 }},
		{"bad color", func(c *Config) { c.Color = "blue" }},
		{"zero threshold", func(c *Config) { c.Links.Threshold = 0 }},
		{"negative count", func(c *Config) { c.Particles.LargeCount = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, particle.ErrInvalidConfig) && !errors.Is(err, particle.ErrInvalidViewport) {
				t.Errorf("expected a particle domain error, got %v", err)
			}
		})
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbfield.yaml")

	cfg := DefaultConfig()
	cfg.Seed = 1234
	cfg.Viewport.Width = 500
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Seed != 1234 || loaded.Viewport.Width != 500 {
		t.Errorf("loaded %+v", loaded)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("seed: 7\nlinks:\n  threshold: 200\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 7 || cfg.Links.Threshold != 200 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Particles.LargeCount != 15 || cfg.Links.Width != 1 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadOnto_KeepsPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte("seed: 99\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := GetPreset("dense")
	cfg, err := LoadOnto(path, base)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 99 {
		t.Errorf("expected seed 99, got %d", cfg.Seed)
	}
	if cfg.Particles.LargeCount != 120 || cfg.Viewport.Width != 1920 || cfg.Theme != "cyberpunk" {
		t.Errorf("preset values lost: %+v", cfg)
	}
	if base.Seed != 0 {
		t.Error("base config modified")
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("viewport: [1, 2"), 0644)
	if _, err := Load(bad); err == nil {
		t.Error("expected parse error")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	os.WriteFile(invalid, []byte("refresh_hz: -1\n"), 0644)
	if _, err := Load(invalid); !errors.Is(err, particle.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("mobile")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Viewport.Width != 390 {
		t.Errorf("expected width 390, got %v", cfg.Viewport.Width)
	}

	cfg.Viewport.Width = 1
	if Presets["mobile"].Viewport.Width != 390 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for _, name := range presets {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv(EnvData, "")
	if got := EnvOr(EnvData, ".orbfield"); got != ".orbfield" {
		t.Errorf("expected fallback, got %q", got)
	}
	t.Setenv(EnvData, "/tmp/runs")
	if got := EnvOr(EnvData, ".orbfield"); got != "/tmp/runs" {
		t.Errorf("expected env value, got %q", got)
	}
}
