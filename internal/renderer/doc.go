// Package renderer animates a particle field onto a drawing surface.
//
// A [Renderer] has two states. Start mounts it on a [Viewport]: it acquires
// a surface, sizes it to the viewport, seeds the field and asks the
// scheduler for a frame. Every frame clears the surface, draws and advances
// each particle, draws the proximity links and asks for the next frame.
// Stop cancels the pending frame, detaches from the viewport and releases
// the field and surface.
//
// When no surface can be acquired Start leaves the renderer stopped and
// returns nil: the background is decorative and its absence is not an
// error.
package renderer
