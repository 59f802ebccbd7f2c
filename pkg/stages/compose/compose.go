// Package compose implements the compositor: the photo is cover-fitted onto
// a fixed size canvas and overlay text is drawn with shadow, fill and stroke.
package compose

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strings"
	"sync/atomic"

	"github.com/user/hemostyle/pkg/pipeline"
	"github.com/user/hemostyle/pkg/ports"
	"github.com/user/hemostyle/pkg/stages/layout"
)

// Options configures the compositor.
type Options struct {
	// FontPath is a TrueType font for overlay text; empty selects the bundled bold face.
	FontPath string
}

// Stage renders a photo and its text overlay onto a new canvas.
type Stage struct {
	renderer ports.Renderer
	sink     ports.DebugSink
	logger   ports.Logger
	opts     Options
	renders  atomic.Int64
}

// NewStage creates a new compose stage.
func NewStage(renderer ports.Renderer, sink ports.DebugSink, logger ports.Logger, opts Options) *Stage {
	return &Stage{
		renderer: renderer,
		sink:     sink,
		logger:   logger.WithComponent("compose"),
		opts:     opts,
	}
}

// Execute renders one canvas. Every call starts from a fresh canvas, so
// identical inputs give identical pixels. On error no canvas is returned.
func (s *Stage) Execute(ctx context.Context, input pipeline.ComposeInput) (pipeline.ComposeResult, error) {
	if s.renderer == nil {
		return pipeline.ComposeResult{}, &pipeline.UnsupportedEnvironmentError{Capability: "canvas"}
	}
	if input.Image == nil || input.Image.Bounds().Empty() {
		return pipeline.ComposeResult{}, &pipeline.ImageDecodeError{Err: errors.New("no image to draw")}
	}
	if !input.AspectRatio.Valid() {
		return pipeline.ComposeResult{}, fmt.Errorf("compose: %w: aspect ratio %q", pipeline.ErrInvalidInput, input.AspectRatio)
	}

	style, err := s.textStyle(input.Overlay)
	if err != nil {
		return pipeline.ComposeResult{}, fmt.Errorf("compose: %w", err)
	}

	cw, ch := input.AspectRatio.Size()
	canvas, err := s.renderer.CreateCanvas(cw, ch, nil)
	if err != nil {
		return pipeline.ComposeResult{}, &pipeline.UnsupportedEnvironmentError{Capability: "canvas", Err: err}
	}

	b := input.Image.Bounds()
	lay, err := layout.NewStage().Execute(ctx, pipeline.LayoutInput{
		ImageSize:   pipeline.Dimension{Width: b.Dx(), Height: b.Dy()},
		AspectRatio: input.AspectRatio,
		Overlay:     input.Overlay,
		Measure: func(text string) float64 {
			w, _ := canvas.MeasureText(text, style)
			return w
		},
	})
	if err != nil {
		return pipeline.ComposeResult{}, fmt.Errorf("compose: %w", err)
	}
	s.logger.Debug("Canvas %dx%d, scale %.3f, %d text lines", cw, ch, lay.Scale, len(lay.Lines))

	canvas.DrawImageScaled(input.Image, lay.ImageOrigin.X, lay.ImageOrigin.Y, lay.ImageSize.X, lay.ImageSize.Y)

	for _, line := range lay.Lines {
		if err := ctx.Err(); err != nil {
			return pipeline.ComposeResult{}, err
		}
		if err := canvas.DrawText(line.Text, line.Anchor.X, line.Anchor.Y, style); err != nil {
			return pipeline.ComposeResult{}, &pipeline.UnsupportedEnvironmentError{Capability: "font", Err: err}
		}
	}

	state := pipeline.CanvasState{
		Width:  cw,
		Height: ch,
		Image:  toRGBA(canvas.ToImage()),
	}

	index := int(s.renders.Add(1)) - 1
	s.saveDebug(index, lay, state.Image)

	return pipeline.ComposeResult{Canvas: state, Layout: lay}, nil
}

// textStyle converts the overlay settings to a renderer text style.
func (s *Stage) textStyle(overlay pipeline.TextOverlay) (ports.TextStyle, error) {
	if strings.TrimSpace(overlay.Content) == "" {
		return ports.TextStyle{FontSize: overlay.FontSizePx, FontPath: s.opts.FontPath}, nil
	}
	if overlay.FontSizePx <= 0 {
		return ports.TextStyle{}, fmt.Errorf("%w: font size %v", pipeline.ErrInvalidInput, overlay.FontSizePx)
	}
	fill, err := pipeline.ParseHexColor(overlay.ColorHex)
	if err != nil {
		return ports.TextStyle{}, err
	}

	fx := pipeline.DefaultTextEffects(fill, overlay.FontSizePx)
	return ports.TextStyle{
		FontSize: overlay.FontSizePx,
		FontPath: s.opts.FontPath,
		Color:    fx.Fill,
		Align:    ports.AlignCenter,
		Shadow: &ports.Shadow{
			Color:   fx.ShadowColor,
			Blur:    fx.ShadowBlur,
			OffsetX: fx.ShadowDX,
			OffsetY: fx.ShadowDY,
		},
		Stroke: &ports.Stroke{
			Color: fx.StrokeColor,
			Width: fx.StrokeWidth,
		},
	}, nil
}

func (s *Stage) saveDebug(index int, lay pipeline.LayoutResult, img image.Image) {
	if s.sink == nil || !s.sink.Enabled() {
		return
	}
	if data, err := json.MarshalIndent(lay, "", "  "); err == nil {
		if err := s.sink.SaveLayoutJSON(data); err != nil {
			s.logger.Warn("Failed to save debug output: %v", err)
		}
	}
	if err := s.sink.SaveComposed(index, img); err != nil {
		s.logger.Warn("Failed to save debug output: %v", err)
	}
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

var _ pipeline.Stage[pipeline.ComposeInput, pipeline.ComposeResult] = (*Stage)(nil)
