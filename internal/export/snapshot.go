package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/san-kum/orbfield/internal/frame"
	"github.com/san-kum/orbfield/internal/particle"
	"github.com/san-kum/orbfield/internal/renderer"
	"github.com/san-kum/orbfield/internal/surface"
)

// Backdrop is the page background the orbs float over.
var Backdrop = color.NRGBA{R: 248, G: 250, B: 252, A: 255}

var ErrUnknownFormat = errors.New("export: unknown format")

// Options controls a snapshot export.
type Options struct {
	Renderer renderer.Options
	Width    float64
	Height   float64
	// Frames is the number of frames run before the capture; for GIF it
	// is the length of the animation.
	Frames int
	// Every records one GIF frame out of every N rendered.
	Every    int
	Rand     particle.Source
	Backdrop color.NRGBA
	Caption  string
}

func (o Options) backdrop() color.NRGBA {
	if o.Backdrop == (color.NRGBA{}) {
		return Backdrop
	}
	return o.Backdrop
}

// run mounts a renderer on s, runs the requested frames and calls onFrame
// after each one.
func run(s surface.Surface, opts Options, onFrame func(n int)) error {
	if opts.Rand == nil {
		return fmt.Errorf("%w: export needs a random source", particle.ErrInvalidConfig)
	}
	frames := opts.Frames
	if frames < 1 {
		frames = 1
	}

	sched := frame.NewManual(time.Unix(0, 0), time.Second/60)
	r := renderer.New(surface.Static(s), sched, opts.Rand, opts.Renderer)
	if err := r.Start(renderer.NewWindow(opts.Width, opts.Height)); err != nil {
		return err
	}
	defer r.Stop()

	for i := 1; i <= frames; i++ {
		sched.Advance()
		if onFrame != nil {
			onFrame(i)
		}
	}
	return nil
}

// WriteSVG renders opts.Frames frames and writes the last one as SVG.
func WriteSVG(w io.Writer, opts Options) error {
	s := NewSVGSurface(opts.backdrop())
	if err := run(s, opts, nil); err != nil {
		return err
	}
	return s.Encode(w)
}

// RenderImage renders opts.Frames frames and returns the last one.
func RenderImage(opts Options) (image.Image, error) {
	s := NewRasterSurface(opts.backdrop())
	if err := run(s, opts, nil); err != nil {
		return nil, err
	}
	s.Caption(opts.Caption, color.NRGBA{R: 30, G: 41, B: 59, A: 255})
	return s.Image(), nil
}

// SavePNG renders opts.Frames frames and saves the last one as PNG.
func SavePNG(path string, opts Options) error {
	s := NewRasterSurface(opts.backdrop())
	if err := run(s, opts, nil); err != nil {
		return err
	}
	s.Caption(opts.Caption, color.NRGBA{R: 30, G: 41, B: 59, A: 255})
	return s.SavePNG(path)
}

// WriteGIF renders opts.Frames frames as a looping animation.
func WriteGIF(w io.Writer, opts Options) error {
	every := opts.Every
	if every < 1 {
		every = 1
	}
	s := NewRasterSurface(opts.backdrop())
	pal := ramp(opts.backdrop(), opts.Renderer.Color, 64)

	anim := gif.GIF{LoopCount: 0}
	err := run(s, opts, func(n int) {
		if (n-1)%every != 0 {
			return
		}
		img := s.Image()
		p := image.NewPaletted(img.Bounds(), pal)
		draw.Draw(p, p.Rect, img, img.Bounds().Min, draw.Src)
		anim.Image = append(anim.Image, p)
		// gif delays are in hundredths of a second
		anim.Delay = append(anim.Delay, max(1, 100*every/60))
	})
	if err != nil {
		return err
	}
	return gif.EncodeAll(w, &anim)
}

// Save picks the format from the file extension.
func Save(path string, opts Options) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return SavePNG(path, opts)
	case ".svg", ".gif":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if ext == ".svg" {
			err = WriteSVG(f, opts)
		} else {
			err = WriteGIF(f, opts)
		}
		if err != nil {
			return err
		}
		return f.Close()
	default:
		return fmt.Errorf("%w: %q (want .svg, .png or .gif)", ErrUnknownFormat, ext)
	}
}

// ramp is an n-colour palette blending from bg to fg.
func ramp(bg, fg color.NRGBA, n int) color.Palette {
	pal := make(color.Palette, n)
	for i := range pal {
		t := float64(i) / float64(n-1)
		pal[i] = color.NRGBA{
			R: lerp(bg.R, fg.R, t),
			G: lerp(bg.G, fg.G, t),
			B: lerp(bg.B, fg.B, t),
			A: 255,
		}
	}
	return pal
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}
