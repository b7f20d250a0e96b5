package particle

import (
	"fmt"
	"math"
)

const (
	// LinkThreshold is the distance below which two particles are linked.
	LinkThreshold = 150.0
	// MaxLinkOpacity is the stroke opacity of a link between coincident particles.
	MaxLinkOpacity = 0.2

	DefaultSmallCount = 8
	DefaultLargeCount = 15
	DefaultBreakpoint = 768.0

	containSlack = 1e-9
)

// Source is the random source used to seed a field. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

type Particle struct {
	X, Y    float64
	DX, DY  float64
	Radius  float64
	Opacity float64
}

// Counts selects the particle count from the viewport width at mount.
type Counts struct {
	Small      int
	Large      int
	Breakpoint float64
}

func DefaultCounts() Counts {
	return Counts{Small: DefaultSmallCount, Large: DefaultLargeCount, Breakpoint: DefaultBreakpoint}
}

func (c Counts) Validate() error {
	if c.Small < 0 || c.Large < 0 {
		return fmt.Errorf("%w: negative particle count (small=%d, large=%d)", ErrInvalidConfig, c.Small, c.Large)
	}
	if c.Breakpoint < 0 || math.IsNaN(c.Breakpoint) {
		return fmt.Errorf("%w: breakpoint %v", ErrInvalidConfig, c.Breakpoint)
	}
	return nil
}

// CountFor returns the small count for viewports narrower than the
// breakpoint and the large count otherwise.
func CountFor(viewportWidth float64, c Counts) int {
	if viewportWidth < c.Breakpoint {
		return c.Small
	}
	return c.Large
}

// ValidateViewport rejects dimensions no surface could have.
func ValidateViewport(w, h float64) error {
	if w < 0 || h < 0 || math.IsNaN(w) || math.IsNaN(h) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return &ViewportError{Width: w, Height: h, Wrapped: ErrInvalidViewport}
	}
	return nil
}

// Field is a fixed-size particle collection confined to a width x height box.
type Field struct {
	particles     []Particle
	width, height float64
}

// New creates n particles with independent uniform draws from rng.
func New(n int, width, height float64, rng Source) *Field {
	if n < 0 {
		n = 0
	}
	f := &Field{
		particles: make([]Particle, n),
		width:     width,
		height:    height,
	}
	for i := range f.particles {
		f.particles[i] = Particle{
			X:       rng.Float64() * width,
			Y:       rng.Float64() * height,
			Radius:  rng.Float64()*3 + 1,
			DX:      (rng.Float64() - 0.5) * 0.5,
			DY:      (rng.Float64() - 0.5) * 0.5,
			Opacity: rng.Float64()*0.5 + 0.3,
		}
	}
	return f
}

// FromParticles builds a field around an explicit particle set.
func FromParticles(ps []Particle, width, height float64) *Field {
	cp := make([]Particle, len(ps))
	copy(cp, ps)
	return &Field{particles: cp, width: width, height: height}
}

func (f *Field) Len() int { return len(f.particles) }

func (f *Field) Bounds() (w, h float64) { return f.width, f.height }

// SetBounds changes the reflection box. Positions and velocities are left
// as they are; a particle outside the new box is turned around by the next
// Step only.
func (f *Field) SetBounds(w, h float64) {
	f.width, f.height = w, h
}

// Particles returns a copy of the current particle set.
func (f *Field) Particles() []Particle {
	cp := make([]Particle, len(f.particles))
	copy(cp, f.particles)
	return cp
}

// At returns particle i by value.
func (f *Field) At(i int) Particle { return f.particles[i] }

// Advance moves particle i by its velocity and reflects it.
func (f *Field) Advance(i int) {
	p := &f.particles[i]
	p.X += p.DX
	p.Y += p.DY
	p.reflect(f.width, f.height)
}

// Step advances and reflects every particle once.
func (f *Field) Step() {
	for i := range f.particles {
		f.Advance(i)
	}
}

func (p *Particle) reflect(w, h float64) {
	if p.X < 0 || p.X > w {
		p.DX = -p.DX
	}
	if p.Y < 0 || p.Y > h {
		p.DY = -p.DY
	}
}

// ForEachPair calls fn once for every unordered pair i < j.
func (f *Field) ForEachPair(fn func(i, j int)) {
	n := len(f.particles)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			fn(i, j)
		}
	}
}

// PairCount is the number of unordered pairs among n particles.
func PairCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

type Link struct {
	I, J     int
	Distance float64
	Opacity  float64
}

// LinkOpacity decays linearly from MaxLinkOpacity at d=0 to zero at the threshold.
func LinkOpacity(d, threshold float64) float64 {
	if threshold <= 0 || d >= threshold {
		return 0
	}
	return MaxLinkOpacity * (1 - d/threshold)
}

func Distance(a, b Particle) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Links returns every pair closer than threshold with its stroke opacity.
func (f *Field) Links(threshold float64) []Link {
	var links []Link
	f.ForEachPair(func(i, j int) {
		d := Distance(f.particles[i], f.particles[j])
		if d < threshold {
			links = append(links, Link{I: i, J: j, Distance: d, Opacity: LinkOpacity(d, threshold)})
		}
	})
	return links
}

// Contained reports whether every particle lies inside the box widened by
// its own per-axis speed. Reflection flips velocity without correcting the
// position, so a particle may sit up to one step past an edge.
func (f *Field) Contained() bool {
	for _, p := range f.particles {
		sx, sy := math.Abs(p.DX)+containSlack, math.Abs(p.DY)+containSlack
		if p.X < -sx || p.X > f.width+sx || p.Y < -sy || p.Y > f.height+sy {
			return false
		}
	}
	return true
}
