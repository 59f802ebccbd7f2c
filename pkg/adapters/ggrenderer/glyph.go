package ggrenderer

import (
	"image"
	"unicode"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// glyphRun is a line of text shaped into positioned glyph outlines.
// Advances come from the same glyph buffers that produce the outlines, so
// measured width and drawn width always agree.
type glyphRun struct {
	glyphs  []placedGlyph
	width   float64
	ascent  float64
	descent float64
	// missing holds visible runes the font maps to the .notdef glyph.
	missing []rune
}

type placedGlyph struct {
	x      float64
	points []truetype.Point
	ends   []int
}

// layoutRun shapes text at size pixels per em without hinting.
func layoutRun(f *truetype.Font, size float64, text string) glyphRun {
	scale := fixed.Int26_6(0.5 + size*64)
	bounds := f.Bounds(scale)
	run := glyphRun{
		ascent:  fixedToFloat(bounds.Max.Y),
		descent: -fixedToFloat(bounds.Min.Y),
	}

	var buf truetype.GlyphBuf
	var pen fixed.Int26_6
	prev, hasPrev := truetype.Index(0), false
	for _, r := range text {
		idx := f.Index(r)
		if idx == 0 {
			if !visible(r) {
				continue
			}
			run.missing = append(run.missing, r)
		}
		if hasPrev {
			pen += f.Kern(scale, prev, idx)
		}
		if err := buf.Load(f, scale, idx, font.HintingNone); err != nil {
			continue
		}
		g := placedGlyph{
			x:      fixedToFloat(pen),
			points: append([]truetype.Point(nil), buf.Points...),
			ends:   append([]int(nil), buf.Ends...),
		}
		run.glyphs = append(run.glyphs, g)
		pen += buf.AdvanceWidth
		prev, hasPrev = idx, true
	}
	run.width = fixedToFloat(pen)
	return run
}

// appendPath adds the outlines of the run to dc's current path with the
// pen starting at (x, baseline).
func (run glyphRun) appendPath(dc *gg.Context, x, baseline float64) {
	for _, g := range run.glyphs {
		start := 0
		for _, end := range g.ends {
			appendContour(dc, g.points[start:end], x+g.x, baseline)
			start = end
		}
	}
}

// appendContour converts one TrueType contour (on/off-curve quadratic points,
// y up) into gg path segments (y down).
func appendContour(dc *gg.Context, ps []truetype.Point, dx, dy float64) {
	if len(ps) == 0 {
		return
	}
	pt := func(p truetype.Point) (float64, float64) {
		return dx + fixedToFloat(p.X), dy - fixedToFloat(p.Y)
	}
	onCurve := func(p truetype.Point) bool { return p.Flags&0x01 != 0 }
	mid := func(a, b truetype.Point) truetype.Point {
		return truetype.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2, Flags: 0x01}
	}

	start, others := ps[0], ps[1:]
	if !onCurve(start) {
		last := ps[len(ps)-1]
		if onCurve(last) {
			start = last
			others = ps[:len(ps)-1]
		} else {
			start = mid(start, last)
			others = ps
		}
	}

	dc.MoveTo(pt(start))
	q0, on0 := start, true
	for _, p := range others {
		on := onCurve(p)
		if on {
			if on0 {
				dc.LineTo(pt(p))
			} else {
				cx, cy := pt(q0)
				x, y := pt(p)
				dc.QuadraticTo(cx, cy, x, y)
			}
		} else if !on0 {
			m := mid(q0, p)
			cx, cy := pt(q0)
			x, y := pt(m)
			dc.QuadraticTo(cx, cy, x, y)
		}
		q0, on0 = p, on
	}

	if on0 {
		dc.LineTo(pt(start))
	} else {
		cx, cy := pt(q0)
		x, y := pt(start)
		dc.QuadraticTo(cx, cy, x, y)
	}
	dc.ClosePath()
}

// blur applies a Gaussian blur with the given sigma. A canvas shadowBlur of
// b corresponds to sigma b/2.
func blur(img image.Image, sigma float64) image.Image {
	if sigma <= 0 {
		return img
	}
	return imaging.Blur(img, sigma)
}

// visible reports whether r needs a glyph of its own. Spaces, joiners and
// variation selectors do not.
func visible(r rune) bool {
	return !unicode.IsSpace(r) && !unicode.Is(unicode.Cf, r) && !unicode.Is(unicode.Variation_Selector, r)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
