package mocks

import (
	"image"
	"image/color"
	"sync"

	"github.com/user/hemostyle/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
// Canvases it creates record their draw calls.
type Renderer struct {
	CreateCanvasFunc func(width, height int, bg color.Color) (ports.Canvas, error)
	EncodeImageFunc  func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)

	mu       sync.Mutex
	canvases []*Canvas
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) (ports.Canvas, error) {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, bg)
	}
	c := NewCanvas(width, height)
	m.mu.Lock()
	m.canvases = append(m.canvases, c)
	m.mu.Unlock()
	return c, nil
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte(format.String()), nil
}

// Canvases returns the canvases created so far.
func (m *Renderer) Canvases() []*Canvas {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Canvas(nil), m.canvases...)
}

var _ ports.Renderer = (*Renderer)(nil)

// DrawnImage records a DrawImageScaled call.
type DrawnImage struct {
	X, Y, Width, Height float64
}

// DrawnText records a DrawText call.
type DrawnText struct {
	Text  string
	X, Y  float64
	Style ports.TextStyle
}

// Canvas is a mock implementation of ports.Canvas. Text is measured at
// CharWidth per rune times the font size.
type Canvas struct {
	width  int
	height int
	img    *image.RGBA

	// CharWidth is the advance of one rune in ems. Zero means 0.5.
	CharWidth    float64
	DrawTextFunc func(text string, x, y float64, style ports.TextStyle) error

	Images []DrawnImage
	Texts  []DrawnText
}

// NewCanvas creates a mock canvas of the given size.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{width: width, height: height}
}

func (m *Canvas) DrawImageScaled(img image.Image, x, y, width, height float64) {
	m.Images = append(m.Images, DrawnImage{X: x, Y: y, Width: width, Height: height})
}

func (m *Canvas) DrawText(text string, x, y float64, style ports.TextStyle) error {
	if m.DrawTextFunc != nil {
		if err := m.DrawTextFunc(text, x, y, style); err != nil {
			return err
		}
	}
	m.Texts = append(m.Texts, DrawnText{Text: text, X: x, Y: y, Style: style})
	return nil
}

func (m *Canvas) MeasureText(text string, style ports.TextStyle) (float64, float64) {
	return MeasureRunes(m.CharWidth, style.FontSize)(text), style.FontSize * 1.2
}

func (m *Canvas) ToImage() image.Image {
	if m.img == nil {
		m.img = image.NewRGBA(image.Rect(0, 0, m.width, m.height))
	}
	return m.img
}

var _ ports.Canvas = (*Canvas)(nil)

// MeasureRunes returns a measure function giving every rune charWidth ems
// at fontSize. Zero charWidth means 0.5.
func MeasureRunes(charWidth, fontSize float64) func(string) float64 {
	if charWidth == 0 {
		charWidth = 0.5
	}
	return func(s string) float64 {
		return float64(len([]rune(s))) * charWidth * fontSize
	}
}
