package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/orbfield/internal/particle"
	"github.com/san-kum/orbfield/internal/renderer"
)

func baseConfig() Config {
	return Config{
		Renderer: renderer.DefaultOptions(),
		Width:    1200,
		Height:   800,
		Frames:   120,
		Seed:     42,
	}
}

func TestRun(t *testing.T) {
	result, err := Run(context.Background(), baseConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Frames != 120 || len(result.Stats) != 120 {
		t.Errorf("expected 120 frames, got %d (%d stats)", result.Frames, len(result.Stats))
	}
	if result.Particles != 15 {
		t.Errorf("expected 15 particles, got %d", result.Particles)
	}
	if result.Circles != 120*15 {
		t.Errorf("expected %d circles, got %d", 120*15, result.Circles)
	}
	if !result.Contained {
		t.Error("particles escaped")
	}
	if result.Summary.Frames != 120 {
		t.Errorf("summary covers %d frames", result.Summary.Frames)
	}
}

func TestRun_SmallViewport(t *testing.T) {
	cfg := baseConfig()
	cfg.Width = 500
	result, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Particles != 8 {
		t.Errorf("expected 8 particles, got %d", result.Particles)
	}
}

func TestRun_Reproducible(t *testing.T) {
	cfg := baseConfig()
	cfg.SampleEvery = 30

	a, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	if len(a.Samples) != 4 || len(b.Samples) != 4 {
		t.Fatalf("expected 4 samples, got %d and %d", len(a.Samples), len(b.Samples))
	}
	for i := range a.Samples {
		for j := range a.Samples[i].Particles {
			if a.Samples[i].Particles[j] != b.Samples[i].Particles[j] {
				t.Fatalf("sample %d particle %d differs", i, j)
			}
		}
	}
}

func TestRun_Samples(t *testing.T) {
	cfg := baseConfig()
	cfg.Frames = 10
	cfg.SampleEvery = 5

	result, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Samples) != 2 || result.Samples[0].Frame != 1 || result.Samples[1].Frame != 6 {
		t.Errorf("unexpected samples %+v", result.Samples)
	}
}

func TestRun_ResizeKeepsCount(t *testing.T) {
	cfg := baseConfig()
	cfg.Resizes = []Resize{{Frame: 10, Width: 400, Height: 300}}

	result, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range result.Stats {
		if s.Particles != 15 {
			t.Fatalf("frame %d: %d particles", s.Frame, s.Particles)
		}
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero frames", func(c *Config) { c.Frames = 0 }, particle.ErrInvalidConfig},
		{"negative width", func(c *Config) { c.Width = -10 }, particle.ErrInvalidViewport},
		{"zero threshold", func(c *Config) { c.Renderer.LinkThreshold = 0 }, particle.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(&cfg)
			if _, err := Run(context.Background(), cfg); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Run(ctx, baseConfig())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.Frames != 0 {
		t.Errorf("expected a partial result with no frames, got %+v", result)
	}
}

func TestEnsemble(t *testing.T) {
	cfg := baseConfig()
	cfg.Frames = 30

	results, err := NewEnsemble(cfg, 6, 100, 2).Run(context.Background())
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Seed != int64(100+i) {
			t.Errorf("result %d has seed %d", i, r.Seed)
		}
		if r.Frames != 30 {
			t.Errorf("result %d ran %d frames", i, r.Frames)
		}
	}
}

func TestEnsemble_PropagatesError(t *testing.T) {
	cfg := baseConfig()
	cfg.Frames = 0

	if _, err := NewEnsemble(cfg, 3, 1, 0).Run(context.Background()); !errors.Is(err, particle.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
