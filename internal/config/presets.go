package config

import "sort"

// Presets are named starting points; a config file or flags override them.
var Presets = map[string]*Config{
	"desktop": {
		Viewport:  ViewportConfig{Width: 1440, Height: 900},
		Particles: ParticleConfig{SmallCount: 8, LargeCount: 15, Breakpoint: 768},
		Links:     LinkConfig{Threshold: 150, Width: 1},
		Color:     DefaultColor, Frames: 600, RefreshHz: 60, Theme: "ocean",
	},
	"mobile": {
		Viewport:  ViewportConfig{Width: 390, Height: 844},
		Particles: ParticleConfig{SmallCount: 8, LargeCount: 15, Breakpoint: 768},
		Links:     LinkConfig{Threshold: 150, Width: 1},
		Color:     DefaultColor, Frames: 600, RefreshHz: 60, Theme: "ocean",
	},
	"dense": {
		Viewport:  ViewportConfig{Width: 1920, Height: 1080},
		Particles: ParticleConfig{SmallCount: 40, LargeCount: 120, Breakpoint: 768},
		Links:     LinkConfig{Threshold: 150, Width: 1},
		Color:     DefaultColor, Frames: 900, RefreshHz: 60, Theme: "cyberpunk",
	},
	"sparse": {
		Viewport:  ViewportConfig{Width: 1280, Height: 720},
		Particles: ParticleConfig{SmallCount: 4, LargeCount: 6, Breakpoint: 768},
		Links:     LinkConfig{Threshold: 300, Width: 1},
		Color:     "#60a5fa", Frames: 600, RefreshHz: 30, Theme: "minimal",
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
