package surface

import "image/color"

// Orb is the fill hue of particles and links; alpha is set per draw.
var Orb = color.NRGBA{R: 59, G: 130, B: 246, A: 255}

// Surface is a full-viewport drawing target repainted every frame.
type Surface interface {
	Size() (w, h float64)
	Resize(w, h float64)
	Clear()
	FillCircle(x, y, r float64, c color.NRGBA)
	StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA)
}

// Provider acquires a surface at mount. ok=false means no drawing context
// is available.
type Provider func() (s Surface, ok bool)

// Static returns a provider that always yields s, or reports no context
// when s is nil.
func Static(s Surface) Provider {
	return func() (Surface, bool) {
		if s == nil {
			return nil, false
		}
		return s, true
	}
}

// Unavailable is a provider with no drawing context.
func Unavailable() (Surface, bool) { return nil, false }

// WithAlpha returns c with its alpha set from an opacity in [0,1].
func WithAlpha(c color.NRGBA, opacity float64) color.NRGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	c.A = uint8(opacity*255 + 0.5)
	return c
}

// Opacity returns the alpha channel of c as a value in [0,1].
func Opacity(c color.NRGBA) float64 {
	return float64(c.A) / 255
}
