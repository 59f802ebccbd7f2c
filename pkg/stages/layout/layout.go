// Package layout implements the layout calculation stage.
package layout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/user/hemostyle/pkg/pipeline"
)

const (
	// WrapRatio is the share of canvas width a text line may occupy.
	WrapRatio = 0.8
	// LineHeightRatio is the line height as a multiple of the font size.
	LineHeightRatio = 1.2
	// BottomMargin is the gap between the last line box and the canvas bottom.
	BottomMargin = 50.0
)

// Stage computes render geometry.
// This is a pure function with no external dependencies.
type Stage struct{}

// NewStage creates a new layout stage.
func NewStage() *Stage {
	return &Stage{}
}

// Execute validates the input and computes the layout.
func (s *Stage) Execute(ctx context.Context, input pipeline.LayoutInput) (pipeline.LayoutResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.LayoutResult{}, err
	}
	if !input.AspectRatio.Valid() {
		return pipeline.LayoutResult{}, fmt.Errorf("layout: unknown aspect ratio %q", input.AspectRatio)
	}
	if input.ImageSize.Width <= 0 || input.ImageSize.Height <= 0 {
		return pipeline.LayoutResult{}, fmt.Errorf("layout: invalid image size %dx%d", input.ImageSize.Width, input.ImageSize.Height)
	}
	if strings.TrimSpace(input.Overlay.Content) != "" && input.Measure == nil {
		return pipeline.LayoutResult{}, errors.New("layout: text needs a measure function")
	}
	return ComputeLayout(input), nil
}

// ComputeLayout performs the layout calculation.
// This is exposed as a standalone function for testing and reuse.
//
// The photo is cover-fitted: scale = max(cw/iw, ch/ih), centred, overflow
// clipped. Text is wrapped greedily on spaces to 80% of the canvas width,
// centred horizontally and bottom anchored: the first baseline sits at
// ch - lines*lineHeight - 50 and each following line one lineHeight lower.
//
// It panics on an aspect ratio outside the table.
func ComputeLayout(input pipeline.LayoutInput) pipeline.LayoutResult {
	cw, ch := input.AspectRatio.Size()
	iw := float64(input.ImageSize.Width)
	ih := float64(input.ImageSize.Height)

	scale := max(float64(cw)/iw, float64(ch)/ih)
	sw, sh := iw*scale, ih*scale

	result := pipeline.LayoutResult{
		Canvas:       pipeline.Dimension{Width: cw, Height: ch},
		Scale:        scale,
		ImageOrigin:  pipeline.Point{X: float64(cw)/2 - sw/2, Y: float64(ch)/2 - sh/2},
		ImageSize:    pipeline.Point{X: sw, Y: sh},
		MaxLineWidth: float64(cw) * WrapRatio,
		LineHeight:   input.Overlay.FontSizePx * LineHeightRatio,
	}

	if strings.TrimSpace(input.Overlay.Content) == "" || input.Measure == nil {
		return result
	}

	lines := Wrap(input.Overlay.Content, result.MaxLineWidth, input.Measure)
	first := float64(ch) - float64(len(lines))*result.LineHeight - BottomMargin
	result.Lines = make([]pipeline.TextLine, len(lines))
	for i, text := range lines {
		result.Lines[i] = pipeline.TextLine{
			Text:  text,
			Width: input.Measure(text),
			Anchor: pipeline.Point{
				X: float64(cw) / 2,
				Y: first + float64(i)*result.LineHeight,
			},
		}
	}
	return result
}

// Wrap packs space separated words into lines no wider than maxWidth.
// A word wider than maxWidth on its own is kept whole on its own line.
func Wrap(text string, maxWidth float64, measure func(string) float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		candidate := line + " " + w
		if measure(candidate) > maxWidth {
			lines = append(lines, line)
			line = w
			continue
		}
		line = candidate
	}
	return append(lines, line)
}

var _ pipeline.Stage[pipeline.LayoutInput, pipeline.LayoutResult] = (*Stage)(nil)
