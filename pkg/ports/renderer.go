package ports

import (
	"image"
	"image/color"
)

// Renderer abstracts image encoding and canvas creation.
type Renderer interface {
	// CreateCanvas creates a new drawing canvas with the specified dimensions and background color.
	// It fails when the environment cannot provide a drawing surface.
	CreateCanvas(width, height int, bg color.Color) (Canvas, error)

	// EncodeImage encodes an image to the specified format.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)
}

// Canvas provides drawing operations for compositing images and text.
type Canvas interface {
	// DrawImageScaled draws the whole image into the rectangle at (x, y) with size (width, height).
	// Pixels falling outside the canvas are clipped.
	DrawImageScaled(img image.Image, x, y, width, height float64)

	// DrawText draws a single line of text. y is the alphabetic baseline and
	// x is interpreted according to style.Align. It fails when the font
	// has no glyph for a non-space rune of text.
	DrawText(text string, x, y float64, style TextStyle) error

	// MeasureText returns the advance width and the line box height of the text.
	MeasureText(text string, style TextStyle) (width, height float64)

	// ToImage returns the canvas as an image.Image.
	ToImage() image.Image
}

// TextStyle defines text rendering properties.
type TextStyle struct {
	FontSize float64
	// FontPath points to a TrueType font; empty selects the bundled bold face.
	FontPath string
	Color    color.Color
	Align    TextAlign
	Shadow   *Shadow
	Stroke   *Stroke
}

// Shadow is a blurred drop shadow painted beneath text.
type Shadow struct {
	Color   color.Color
	Blur    float64
	OffsetX float64
	OffsetY float64
}

// Stroke is an outline painted on top of the text fill.
type Stroke struct {
	Color color.Color
	Width float64
}

// TextAlign specifies text alignment.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
)

// String returns the short name of the format.
func (f ImageFormat) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatPNG:
		return "png"
	default:
		return "unknown"
	}
}
