// Package particle implements the particle field behind the floating-orb
// background: a fixed set of points moving at constant speed, reflecting
// off the surface edges, linked to their close neighbours.
//
//   - [Particle]: position, velocity, radius and opacity of one point
//   - [Field]: the fixed-size collection and its per-frame step
//   - [Link]: a proximity link between two particles
//
// # Example
//
//	rng := rand.New(rand.NewPCG(1, 2))
//	f := particle.New(particle.CountFor(1200, particle.DefaultCounts()), 1200, 800, rng)
//	f.Step()
//	links := f.Links(particle.LinkThreshold)
//
// # Thread Safety
//
// Field instances are NOT thread-safe. The renderer owns its field and
// only touches it from the frame callback.
package particle
