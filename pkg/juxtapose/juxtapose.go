// Package juxtapose places an original photo and its styled version side by side.
package juxtapose

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Options configures the juxtapose operation.
type Options struct {
	// Gap is the horizontal gap between the two photos in pixels.
	Gap int
	// Height is the output height; 0 keeps the height of the before photo.
	Height int
	// Background fills the gap and any uncovered area.
	Background color.Color
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{
		Gap:        10,
		Height:     0,
		Background: color.White,
	}
}

// Combine resizes both photos to a common height and pastes them left to right.
func Combine(before, after image.Image, opts Options) *image.NRGBA {
	height := opts.Height
	if height <= 0 {
		height = before.Bounds().Dy()
	}
	gap := opts.Gap
	if gap < 0 {
		gap = 0
	}
	bg := opts.Background
	if bg == nil {
		bg = color.White
	}

	left := fitHeight(before, height)
	right := fitHeight(after, height)

	width := left.Bounds().Dx() + gap + right.Bounds().Dx()
	dst := imaging.New(width, height, bg)
	dst = imaging.Overlay(dst, left, image.Pt(0, 0), 1.0)
	dst = imaging.Overlay(dst, right, image.Pt(left.Bounds().Dx()+gap, 0), 1.0)
	return dst
}

// fitHeight scales img to height, preserving the aspect ratio.
func fitHeight(img image.Image, height int) image.Image {
	if img.Bounds().Dy() == height {
		return img
	}
	return imaging.Resize(img, 0, height, imaging.Lanczos)
}
