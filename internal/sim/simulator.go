package sim

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/san-kum/orbfield/internal/analysis"
	"github.com/san-kum/orbfield/internal/frame"
	"github.com/san-kum/orbfield/internal/particle"
	"github.com/san-kum/orbfield/internal/renderer"
	"github.com/san-kum/orbfield/internal/surface"
)

type Config struct {
	Renderer renderer.Options
	Width    float64
	Height   float64
	Frames   int
	Seed     int64
	// SampleEvery keeps the particle set of one frame in every N; zero
	// keeps none.
	SampleEvery int
	// Resizes are applied before the given frame runs.
	Resizes []Resize
}

// Resize changes the viewport before frame Frame is drawn.
type Resize struct {
	Frame  int     `json:"frame"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Sample is the particle set after a frame.
type Sample struct {
	Frame     int
	Particles []particle.Particle
}

type Result struct {
	Seed      int64
	Particles int
	Frames    int
	Stats     []renderer.FrameStats
	Samples   []Sample
	Summary   analysis.Summary
	Contained bool
	Circles   int
	Lines     int
}

// NewRand returns the seeded source used for every run.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x5851f42d4c957f2d))
}

func (c Config) validate() error {
	if c.Frames <= 0 {
		return fmt.Errorf("%w: frames must be positive, got %d", particle.ErrInvalidConfig, c.Frames)
	}
	if err := particle.ValidateViewport(c.Width, c.Height); err != nil {
		return err
	}
	return c.Renderer.Validate()
}

// Run drives a renderer headlessly for cfg.Frames frames against a
// recording surface.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	rec := surface.NewRecorder(0, 0)
	sched := frame.NewManual(time.Unix(0, 0), time.Second/60)
	win := renderer.NewWindow(cfg.Width, cfg.Height)
	r := renderer.New(surface.Static(rec), sched, NewRand(cfg.Seed), cfg.Renderer)

	collector := analysis.NewCollector(cfg.Frames)
	result := &Result{
		Seed:      cfg.Seed,
		Stats:     make([]renderer.FrameStats, 0, cfg.Frames),
		Contained: true,
	}
	r.AddObserver(collector)
	r.AddObserver(renderer.ObserverFunc(func(s renderer.FrameStats) {
		result.Stats = append(result.Stats, s)
	}))

	if err := r.Start(win); err != nil {
		return nil, err
	}
	defer r.Stop()
	result.Particles = len(r.Particles())

	shrunk := false
	for i := 1; i <= cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		for _, rs := range cfg.Resizes {
			if rs.Frame == i {
				w, h := win.Size()
				if rs.Width < w || rs.Height < h {
					shrunk = true
				}
				win.Resize(rs.Width, rs.Height)
			}
		}

		sched.Advance()
		rec.Reset()
		result.Frames++

		if cfg.SampleEvery > 0 && (i-1)%cfg.SampleEvery == 0 {
			result.Samples = append(result.Samples, Sample{Frame: i, Particles: r.Particles()})
		}
	}

	w, h := win.Size()
	if !shrunk {
		result.Contained = particle.FromParticles(r.Particles(), w, h).Contained()
	}
	result.Summary = collector.Summarize()
	for _, s := range result.Stats {
		result.Circles += s.Particles
		result.Lines += s.Links
	}
	return result, nil
}
