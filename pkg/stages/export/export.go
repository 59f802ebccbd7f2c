// Package export implements the image export stage.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/user/hemostyle/pkg/imagesource"
	"github.com/user/hemostyle/pkg/pipeline"
	"github.com/user/hemostyle/pkg/ports"
)

const (
	// BaseFilename is the download name without extension.
	BaseFilename = "hemostyle-edit"
	// DefaultJPEGQuality is used when no quality is configured.
	DefaultJPEGQuality = 90
)

// ErrUnsupportedFormat is returned for formats other than PNG and JPEG.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat maps "png", "jpg" and "jpeg" to an image format.
func ParseFormat(s string) (ports.ImageFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return ports.FormatPNG, nil
	case "jpg", "jpeg":
		return ports.FormatJPEG, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Extension returns the file extension for format, without the dot.
func Extension(format ports.ImageFormat) string {
	if format == ports.FormatJPEG {
		return "jpg"
	}
	return "png"
}

// MIMEType returns the media type for format.
func MIMEType(format ports.ImageFormat) string {
	if format == ports.FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Filename returns the download filename for format.
func Filename(format ports.ImageFormat) string {
	return BaseFilename + "." + Extension(format)
}

// Stage serialises a finished canvas. It never resizes.
type Stage struct {
	renderer ports.Renderer
	logger   ports.Logger
	quality  int
}

// NewStage creates a new export stage. A quality outside 1..100 selects
// DefaultJPEGQuality.
func NewStage(renderer ports.Renderer, logger ports.Logger, quality int) *Stage {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Stage{
		renderer: renderer,
		logger:   logger.WithComponent("export"),
		quality:  quality,
	}
}

// Execute encodes the canvas. PNG keeps alpha; JPEG is composited over
// opaque black first.
func (s *Stage) Execute(ctx context.Context, input pipeline.ExportInput) (pipeline.ExportResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.ExportResult{}, err
	}
	if input.Canvas.Image == nil {
		return pipeline.ExportResult{}, errors.New("export: empty canvas")
	}

	var (
		data []byte
		err  error
	)
	switch input.Format {
	case ports.FormatPNG:
		data, err = s.renderer.EncodeImage(input.Canvas.Image, ports.FormatPNG, 0)
	case ports.FormatJPEG:
		data, err = s.renderer.EncodeImage(flatten(input.Canvas.Image), ports.FormatJPEG, s.quality)
	default:
		return pipeline.ExportResult{}, fmt.Errorf("export: %w: %s", ErrUnsupportedFormat, input.Format)
	}
	if err != nil {
		return pipeline.ExportResult{}, fmt.Errorf("export: %w", err)
	}

	mime := MIMEType(input.Format)
	s.logger.Debug("Encoded %dx%d canvas as %s: %d bytes", input.Canvas.Width, input.Canvas.Height, input.Format, len(data))

	return pipeline.ExportResult{
		Data:     data,
		MIMEType: mime,
		DataURI:  imagesource.EncodeDataURI(mime, data),
		Filename: Filename(input.Format),
		Hash:     imagesource.ContentHash(data, 16),
	}, nil
}

// flatten composites img over opaque black.
func flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}

var _ pipeline.Stage[pipeline.ExportInput, pipeline.ExportResult] = (*Stage)(nil)
