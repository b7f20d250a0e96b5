package tui

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/san-kum/orbfield/internal/frame"
	"github.com/san-kum/orbfield/internal/particle"
	"github.com/san-kum/orbfield/internal/renderer"
	"github.com/san-kum/orbfield/internal/surface"
)

const (
	defaultCols = 80
	defaultRows = 22
	cellWidth   = 8.0
	cellHeight  = 16.0

	clearScreen = "\033[2J\033[H"
	home        = "\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
	reset       = "\033[0m"
)

type Options struct {
	Renderer  renderer.Options
	Cols      int
	Rows      int
	RefreshHz int
	// Frames stops the player after that many frames; zero plays until the
	// context is cancelled.
	Frames int
	Rand   particle.Source
	// Display paces the frames. Nil uses a fixed-rate refresh at RefreshHz.
	Display frame.Display
	// Color disables ANSI colour when false.
	Color bool
}

// LiveRenderer plays the particle field on a plain ANSI terminal, without
// taking over input. Frames are paced by a frame.Loop.
type LiveRenderer struct {
	out     io.Writer
	opts    Options
	canvas  *surface.Braille
	win     *renderer.Window
	loop    *frame.Loop
	refresh *frame.Refresh
	r       *renderer.Renderer
	frames  int
	cancel  context.CancelFunc
	err     error
}

func NewLiveRenderer(out io.Writer, opts Options) *LiveRenderer {
	if opts.Cols <= 0 {
		opts.Cols = defaultCols
	}
	if opts.Rows <= 0 {
		opts.Rows = defaultRows
	}

	l := &LiveRenderer{
		out:    out,
		opts:   opts,
		canvas: surface.NewBraille(cellWidth, cellHeight),
		win:    renderer.NewWindow(float64(opts.Cols)*cellWidth, float64(opts.Rows)*cellHeight),
	}

	display := opts.Display
	if display == nil {
		l.refresh = frame.NewRefresh(opts.RefreshHz)
		display = l.refresh
	}
	l.loop = frame.NewLoop(display)
	l.r = renderer.New(surface.Static(l.canvas), l.loop, opts.Rand, opts.Renderer)
	l.r.AddObserver(l)
	return l
}

// Resize changes the terminal size in cells. Call it before Run or from
// the goroutine running it.
func (l *LiveRenderer) Resize(cols, rows int) {
	if cols < 1 || rows < 1 {
		return
	}
	l.win.Resize(float64(cols)*cellWidth, float64(rows)*cellHeight)
}

// Run mounts the renderer and plays until ctx is done, the frame limit is
// reached or the output fails.
func (l *LiveRenderer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	l.cancel = cancel

	if l.refresh != nil {
		defer l.refresh.Stop()
	}
	if err := l.r.Start(l.win); err != nil {
		return err
	}
	defer l.r.Stop()

	fmt.Fprint(l.out, hideCursor+clearScreen)
	defer fmt.Fprint(l.out, showCursor+"\n")

	if err := l.loop.Run(ctx); err != nil {
		return err
	}
	return l.err
}

// OnFrame paints the canvas after every renderer frame.
func (l *LiveRenderer) OnFrame(s renderer.FrameStats) {
	var b strings.Builder
	b.WriteString(home)
	if l.opts.Color {
		orb := fg(l.opts.Renderer.Color)
		link := fg(dim(l.opts.Renderer.Color))
		b.WriteString(l.canvas.Render(func(layer surface.Layer, cell string) string {
			switch layer {
			case surface.LayerOrb:
				return orb + cell + reset
			case surface.LayerLink:
				return link + cell + reset
			}
			return cell
		}))
	} else {
		b.WriteString(l.canvas.String())
	}
	fmt.Fprintf(&b, "\nframe %-8d orbs %-3d links %-3d", s.Frame, s.Particles, s.Links)

	if _, err := io.WriteString(l.out, b.String()); err != nil {
		l.err = err
		l.cancel()
		return
	}

	l.frames++
	if l.opts.Frames > 0 && l.frames >= l.opts.Frames {
		l.cancel()
	}
}

// Frames reports how many frames have been painted.
func (l *LiveRenderer) Frames() int { return l.frames }

func (l *LiveRenderer) Renderer() *renderer.Renderer { return l.r }

func fg(c color.NRGBA) string {
	return fmt.Sprintf("\033[38;2;%d;%d;%dm", c.R, c.G, c.B)
}

func dim(c color.NRGBA) color.NRGBA {
	return color.NRGBA{R: c.R / 2, G: c.G / 2, B: c.B / 2, A: c.A}
}
