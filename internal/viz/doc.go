// Package viz renders the particle field live in the terminal.
//
// The view is a Bubble Tea program. Each repaint message drives one frame
// of the renderer, which draws into a braille [surface.Braille] sized to
// the terminal window; window size messages are the viewport's resize
// events.
//
// # Key Bindings
//
//	T - Cycle color themes
//	G - Toggle link-count graph
//	? - Show help overlay
//	Q - Quit (tears the renderer down)
package viz
