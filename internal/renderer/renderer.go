package renderer

import (
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/san-kum/orbfield/internal/frame"
	"github.com/san-kum/orbfield/internal/particle"
	"github.com/san-kum/orbfield/internal/surface"
)

type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Options tunes what a renderer draws. The zero value is not usable; start
// from DefaultOptions.
type Options struct {
	Counts        particle.Counts
	LinkThreshold float64
	LinkWidth     float64
	Color         color.NRGBA
}

func DefaultOptions() Options {
	return Options{
		Counts:        particle.DefaultCounts(),
		LinkThreshold: particle.LinkThreshold,
		LinkWidth:     1,
		Color:         surface.Orb,
	}
}

func (o Options) Validate() error {
	if err := o.Counts.Validate(); err != nil {
		return err
	}
	if o.LinkThreshold <= 0 {
		return fmt.Errorf("%w: link threshold must be positive, got %v", particle.ErrInvalidConfig, o.LinkThreshold)
	}
	if o.LinkWidth <= 0 {
		return fmt.Errorf("%w: link width must be positive, got %v", particle.ErrInvalidConfig, o.LinkWidth)
	}
	return nil
}

// FrameStats describes one drawn frame.
type FrameStats struct {
	Frame       uint64
	Time        time.Time
	Particles   int
	Links       int
	MeanOpacity float64
	Elapsed     time.Duration
}

// Observer is notified after every drawn frame, outside the renderer lock.
type Observer interface {
	OnFrame(s FrameStats)
}

type ObserverFunc func(FrameStats)

func (f ObserverFunc) OnFrame(s FrameStats) { f(s) }

// Renderer owns one particle field and the surface it is drawn on.
type Renderer struct {
	mu        sync.Mutex
	opts      Options
	provider  surface.Provider
	sched     frame.Scheduler
	rng       particle.Source
	observers []Observer

	state   State
	surface surface.Surface
	field   *particle.Field
	handle  frame.Handle
	gen     uint64
	frames  uint64
	detach  func()
}

func New(provider surface.Provider, sched frame.Scheduler, rng particle.Source, opts Options) *Renderer {
	return &Renderer{
		opts:     opts,
		provider: provider,
		sched:    sched,
		rng:      rng,
	}
}

func (r *Renderer) AddObserver(o Observer) {
	r.mu.Lock()
	r.observers = append(r.observers, o)
	r.mu.Unlock()
}

// Start mounts the renderer on vp. A renderer that is already running is
// left alone. Only an unusable viewport or options produce an error; a
// missing surface leaves the renderer stopped and returns nil.
func (r *Renderer) Start(vp Viewport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Running {
		return nil
	}
	if err := r.opts.Validate(); err != nil {
		return err
	}
	w, h := vp.Size()
	if err := particle.ValidateViewport(w, h); err != nil {
		return err
	}

	s, ok := r.provider()
	if !ok || s == nil {
		return nil
	}
	s.Resize(w, h)

	r.surface = s
	r.field = particle.New(particle.CountFor(w, r.opts.Counts), w, h, r.rng)
	r.state = Running
	r.gen++
	r.detach = vp.OnResize(r.Resize)
	r.handle = r.sched.Request(r.callback(r.gen))
	return nil
}

// Stop tears the renderer down. A callback already handed to the scheduler
// will find the renderer stopped and draw nothing.
func (r *Renderer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Running {
		return
	}
	r.sched.Cancel(r.handle)
	if r.detach != nil {
		r.detach()
	}
	r.state = Stopped
	r.gen++
	r.handle = 0
	r.detach = nil
	r.field = nil
	r.surface = nil
}

// Resize sizes the surface to w x h. Particles keep their positions and
// velocities; the next frame reflects against the new bounds.
func (r *Renderer) Resize(w, h float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Running {
		return
	}
	if err := particle.ValidateViewport(w, h); err != nil {
		return
	}
	r.surface.Resize(w, h)
	r.field.SetBounds(w, h)
}

func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Frames reports the number of frames drawn since creation.
func (r *Renderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Particles returns a copy of the field, or nil while stopped.
func (r *Renderer) Particles() []particle.Particle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.field == nil {
		return nil
	}
	return r.field.Particles()
}

// Surface returns the mounted surface, or nil while stopped.
func (r *Renderer) Surface() surface.Surface {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surface
}

func (r *Renderer) callback(gen uint64) frame.Callback {
	return func(now time.Time) {
		r.mu.Lock()
		if r.state != Running || r.gen != gen {
			r.mu.Unlock()
			return
		}

		start := time.Now()
		stats := r.draw()
		r.frames++
		stats.Frame = r.frames
		stats.Time = now
		stats.Elapsed = time.Since(start)
		r.handle = r.sched.Request(r.callback(gen))
		observers := r.observers
		r.mu.Unlock()

		for _, o := range observers {
			o.OnFrame(stats)
		}
	}
}

func (r *Renderer) draw() FrameStats {
	s, f := r.surface, r.field
	s.Clear()

	for i := 0; i < f.Len(); i++ {
		p := f.At(i)
		s.FillCircle(p.X, p.Y, p.Radius, surface.WithAlpha(r.opts.Color, p.Opacity))
		f.Advance(i)
	}

	links := f.Links(r.opts.LinkThreshold)
	sum := 0.0
	for _, l := range links {
		a, b := f.At(l.I), f.At(l.J)
		s.StrokeLine(a.X, a.Y, b.X, b.Y, r.opts.LinkWidth, surface.WithAlpha(r.opts.Color, l.Opacity))
		sum += l.Opacity
	}

	stats := FrameStats{Particles: f.Len(), Links: len(links)}
	if len(links) > 0 {
		stats.MeanOpacity = sum / float64(len(links))
	}
	return stats
}
