package export

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/ajstarks/svgo"

	"github.com/san-kum/orbfield/internal/surface"
)

// svgScale is the number of SVG user units per surface unit; svgo takes
// integer coordinates.
const svgScale = 100

// SVGSurface keeps the draw calls of the current frame and encodes them as
// an SVG document on demand.
type SVGSurface struct {
	Backdrop color.NRGBA

	w, h float64
	ops  []surface.Op
}

func NewSVGSurface(backdrop color.NRGBA) *SVGSurface {
	return &SVGSurface{Backdrop: backdrop}
}

func (s *SVGSurface) Size() (float64, float64) { return s.w, s.h }

func (s *SVGSurface) Resize(w, h float64) { s.w, s.h = w, h }

func (s *SVGSurface) Clear() { s.ops = s.ops[:0] }

func (s *SVGSurface) FillCircle(x, y, r float64, c color.NRGBA) {
	s.ops = append(s.ops, surface.Op{Kind: surface.OpCircle, X0: x, Y0: y, R: r, Color: c})
}

func (s *SVGSurface) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	s.ops = append(s.ops, surface.Op{Kind: surface.OpLine, X0: x0, Y0: y0, X1: x1, Y1: y1, Width: width, Color: c})
}

// Encode writes the current frame. The viewBox matches the surface size;
// shapes past the edges are clipped by the viewer like a canvas would.
func (s *SVGSurface) Encode(w io.Writer) error {
	width := int(math.Ceil(s.w))
	height := int(math.Ceil(s.h))

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Startview(width, height, 0, 0, width*svgScale, height*svgScale)
	canvas.Rect(0, 0, width*svgScale, height*svgScale, fmt.Sprintf("fill:%s", css(s.Backdrop)))

	for _, op := range s.ops {
		switch op.Kind {
		case surface.OpCircle:
			canvas.Circle(u(op.X0), u(op.Y0), u(op.R),
				fmt.Sprintf("fill:%s;fill-opacity:%.3f", css(op.Color), surface.Opacity(op.Color)))
		case surface.OpLine:
			canvas.Line(u(op.X0), u(op.Y0), u(op.X1), u(op.Y1),
				fmt.Sprintf("stroke:%s;stroke-opacity:%.3f;stroke-width:%d", css(op.Color), surface.Opacity(op.Color), u(op.Width)))
		}
	}

	canvas.End()
	return ew.err
}

// errWriter keeps the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

// Shapes reports how many circles and lines the current frame holds.
func (s *SVGSurface) Shapes() (circles, lines int) {
	for _, op := range s.ops {
		switch op.Kind {
		case surface.OpCircle:
			circles++
		case surface.OpLine:
			lines++
		}
	}
	return circles, lines
}

func u(v float64) int {
	return int(math.Round(v * svgScale))
}

func css(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
