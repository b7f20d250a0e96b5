package renderer

import "sync"

// Viewport is the host window the renderer fills.
type Viewport interface {
	Size() (w, h float64)
	// OnResize registers fn for size changes and returns a function that
	// removes it.
	OnResize(fn func(w, h float64)) (remove func())
}

// Window is an in-process Viewport whose size is set by the host.
type Window struct {
	mu        sync.Mutex
	w, h      float64
	next      int
	listeners map[int]func(w, h float64)
}

func NewWindow(w, h float64) *Window {
	return &Window{w: w, h: h, listeners: make(map[int]func(w, h float64))}
}

func (win *Window) Size() (float64, float64) {
	win.mu.Lock()
	defer win.mu.Unlock()
	return win.w, win.h
}

func (win *Window) OnResize(fn func(w, h float64)) func() {
	win.mu.Lock()
	defer win.mu.Unlock()
	id := win.next
	win.next++
	win.listeners[id] = fn
	return func() {
		win.mu.Lock()
		delete(win.listeners, id)
		win.mu.Unlock()
	}
}

// Resize sets the window size and notifies every listener.
func (win *Window) Resize(w, h float64) {
	win.mu.Lock()
	win.w, win.h = w, h
	fns := make([]func(w, h float64), 0, len(win.listeners))
	for _, fn := range win.listeners {
		fns = append(fns, fn)
	}
	win.mu.Unlock()

	for _, fn := range fns {
		fn(w, h)
	}
}

// Listeners reports how many resize listeners are registered.
func (win *Window) Listeners() int {
	win.mu.Lock()
	defer win.mu.Unlock()
	return len(win.listeners)
}
