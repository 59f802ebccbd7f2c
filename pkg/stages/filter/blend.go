package filter

import (
	"image/color"
	"math"
)

// BlendMode is a separable compositing blend mode.
type BlendMode string

const (
	BlendOverlay   BlendMode = "overlay"
	BlendSoftLight BlendMode = "soft-light"
)

// Wash is a flat colour painted over the whole image at full opacity.
type Wash struct {
	Mode  BlendMode
	Color color.NRGBA
}

// blendChannel returns B(cb, cs) for backdrop cb and source cs in [0,1].
// Unknown modes blend as normal.
func blendChannel(mode BlendMode, cb, cs float64) float64 {
	switch mode {
	case BlendOverlay:
		return hardLight(cs, cb)
	case BlendSoftLight:
		if cs <= 0.5 {
			return cb - (1-2*cs)*cb*(1-cb)
		}
		var d float64
		if cb <= 0.25 {
			d = ((16*cb-12)*cb + 4) * cb
		} else {
			d = math.Sqrt(cb)
		}
		return cb + (2*cs-1)*(d-cb)
	default:
		return cs
	}
}

func screen(cb, cs float64) float64 {
	return cb + cs - cb*cs
}

// hardLight is HardLight(cb, cs); overlay is hardLight with arguments swapped.
func hardLight(cb, cs float64) float64 {
	if cs <= 0.5 {
		return cb * 2 * cs
	}
	return screen(cb, 2*cs-1)
}

// apply composites the opaque wash over a straight-alpha pixel.
// With source alpha 1 the result is opaque:
// co = (1 - ab)*cs + ab*B(cb, cs).
func (w Wash) apply(r, g, b, a float64) (float64, float64, float64, float64) {
	sr := float64(w.Color.R) / 255
	sg := float64(w.Color.G) / 255
	sb := float64(w.Color.B) / 255
	mix := func(cb, cs float64) float64 {
		return clamp01((1-a)*cs + a*blendChannel(w.Mode, cb, cs))
	}
	return mix(r, sr), mix(g, sg), mix(b, sb), 1
}
