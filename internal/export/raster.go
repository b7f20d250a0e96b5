package export

import (
	"image"
	"image/color"
	"math"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"
)

// RasterSurface draws frames into an RGBA image through gg.
type RasterSurface struct {
	Backdrop color.NRGBA

	w, h float64
	dc   *gg.Context
}

func NewRasterSurface(backdrop color.NRGBA) *RasterSurface {
	return &RasterSurface{Backdrop: backdrop}
}

func (s *RasterSurface) Size() (float64, float64) { return s.w, s.h }

// Resize replaces the backing image; its contents are lost, as with a
// canvas whose width is assigned.
func (s *RasterSurface) Resize(w, h float64) {
	s.w, s.h = w, h
	pw, ph := int(math.Ceil(w)), int(math.Ceil(h))
	if pw < 1 {
		pw = 1
	}
	if ph < 1 {
		ph = 1
	}
	s.dc = gg.NewContext(pw, ph)
	s.Clear()
}

func (s *RasterSurface) Clear() {
	if s.dc == nil {
		return
	}
	s.dc.SetColor(s.Backdrop)
	s.dc.Clear()
}

func (s *RasterSurface) FillCircle(x, y, r float64, c color.NRGBA) {
	if s.dc == nil {
		return
	}
	s.dc.SetColor(c)
	s.dc.DrawCircle(x, y, r)
	s.dc.Fill()
}

func (s *RasterSurface) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	if s.dc == nil {
		return
	}
	s.dc.SetColor(c)
	s.dc.SetLineWidth(width)
	s.dc.DrawLine(x0, y0, x1, y1)
	s.dc.Stroke()
}

// Caption stamps text in the top-left corner of the current frame.
func (s *RasterSurface) Caption(text string, c color.Color) {
	if s.dc == nil || text == "" {
		return
	}
	s.dc.SetFontFace(basicfont.Face7x13)
	s.dc.SetColor(c)
	s.dc.DrawStringAnchored(text, 8, 12, 0, 0.5)
}

// Image returns the current frame.
func (s *RasterSurface) Image() image.Image {
	if s.dc == nil {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	return s.dc.Image()
}

func (s *RasterSurface) SavePNG(path string) error {
	if s.dc == nil {
		s.Resize(1, 1)
	}
	return s.dc.SavePNG(path)
}
