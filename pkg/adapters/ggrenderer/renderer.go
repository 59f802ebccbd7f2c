// Package ggrenderer provides a renderer implementation using the gg library.
package ggrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/user/hemostyle/pkg/ports"
)

// ErrMissingGlyphs is returned by DrawText when the font cannot draw every
// visible rune of the text.
var ErrMissingGlyphs = errors.New("font has no glyphs for text")

// Renderer implements ports.Renderer using the gg library.
// Parsed fonts are cached per path and shared by all canvases.
type Renderer struct {
	mu    sync.Mutex
	fonts map[string]*truetype.Font
}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{
		fonts: make(map[string]*truetype.Font),
	}
}

// CreateCanvas creates a new drawing canvas.
func (r *Renderer) CreateCanvas(width, height int, bg color.Color) (ports.Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	dc := gg.NewContext(width, height)
	if bg != nil {
		dc.SetColor(bg)
		dc.Clear()
	}
	return &Canvas{dc: dc, renderer: r}, nil
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		if quality <= 0 || quality > 100 {
			quality = 90
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	return buf.Bytes(), nil
}

// font returns the parsed font for path, the bundled Go Bold face when path is empty.
func (r *Renderer) font(path string) (*truetype.Font, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.fonts[path]; ok {
		return f, nil
	}

	data := gobold.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
		data = b
	}

	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	r.fonts[path] = f
	return f, nil
}

// Ensure Renderer implements ports.Renderer
var _ ports.Renderer = (*Renderer)(nil)

// Canvas implements ports.Canvas using gg.Context.
type Canvas struct {
	dc       *gg.Context
	renderer *Renderer
}

// DrawImageScaled draws an image scaled into the given rectangle.
func (c *Canvas) DrawImageScaled(img image.Image, x, y, width, height float64) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return
	}

	c.dc.Push()
	defer c.dc.Pop()

	c.dc.Translate(x, y)
	c.dc.Scale(width/float64(bounds.Dx()), height/float64(bounds.Dy()))
	c.dc.DrawImage(img, 0, 0)
}

// DrawText draws one line of text as glyph outlines: shadow, then fill, then stroke.
func (c *Canvas) DrawText(text string, x, y float64, style ports.TextStyle) error {
	if text == "" {
		return nil
	}
	f, err := c.renderer.font(style.FontPath)
	if err != nil {
		return err
	}

	run := layoutRun(f, style.FontSize, text)
	if len(run.missing) > 0 {
		return fmt.Errorf("%w: %q", ErrMissingGlyphs, string(run.missing))
	}
	originX := x - run.width*alignFactor(style.Align)

	if style.Shadow != nil && !isTransparent(style.Shadow.Color) {
		c.drawShadow(run, originX, y, style)
	}

	if style.Color != nil {
		c.dc.SetColor(style.Color)
		run.appendPath(c.dc, originX, y)
		c.dc.Fill()
	}

	if style.Stroke != nil && style.Stroke.Width > 0 {
		c.dc.SetColor(style.Stroke.Color)
		c.dc.SetLineWidth(style.Stroke.Width)
		c.dc.SetLineJoinRound()
		run.appendPath(c.dc, originX, y)
		c.dc.Stroke()
	}

	return nil
}

// drawShadow paints the text silhouette on a scratch layer, blurs it and
// composites it at the shadow offset.
func (c *Canvas) drawShadow(run glyphRun, x, y float64, style ports.TextStyle) {
	sh := style.Shadow
	strokeWidth := 0.0
	if style.Stroke != nil {
		strokeWidth = style.Stroke.Width
	}

	sigma := sh.Blur / 2
	bounds := shadowBounds(run, x+sh.OffsetX, y+sh.OffsetY, 3*sigma+strokeWidth+2)

	layer := gg.NewContext(bounds.Dx(), bounds.Dy())
	layer.SetColor(sh.Color)
	ox := x + sh.OffsetX - float64(bounds.Min.X)
	oy := y + sh.OffsetY - float64(bounds.Min.Y)
	if style.Color != nil {
		run.appendPath(layer, ox, oy)
		layer.Fill()
	}
	if strokeWidth > 0 {
		layer.SetLineWidth(strokeWidth)
		run.appendPath(layer, ox, oy)
		layer.Stroke()
	}

	c.dc.DrawImage(blur(layer.Image(), sigma), bounds.Min.X, bounds.Min.Y)
}

// shadowBounds returns the pixel rectangle of the scratch layer for a run
// whose pen starts at (x, baseline), grown by pad plus one pixel on every side.
func shadowBounds(run glyphRun, x, baseline, pad float64) image.Rectangle {
	left := int(math.Floor(x-pad)) - 1
	top := int(math.Floor(baseline-run.ascent-pad)) - 1
	right := int(math.Ceil(x+run.width+pad)) + 1
	bottom := int(math.Ceil(baseline+run.descent+pad)) + 1
	return image.Rect(left, top, right, bottom)
}

// MeasureText returns the advance width and the line box height of text.
func (c *Canvas) MeasureText(text string, style ports.TextStyle) (float64, float64) {
	f, err := c.renderer.font(style.FontPath)
	if err != nil {
		return 0, 0
	}
	run := layoutRun(f, style.FontSize, text)
	return run.width, run.ascent + run.descent
}

// ToImage returns the canvas as an image.Image.
func (c *Canvas) ToImage() image.Image {
	return c.dc.Image()
}

// Ensure Canvas implements ports.Canvas
var _ ports.Canvas = (*Canvas)(nil)

func alignFactor(a ports.TextAlign) float64 {
	switch a {
	case ports.AlignCenter:
		return 0.5
	case ports.AlignRight:
		return 1
	default:
		return 0
	}
}

func isTransparent(c color.Color) bool {
	if c == nil {
		return true
	}
	_, _, _, a := c.RGBA()
	return a == 0
}
