// Package filter implements the local style simulation: keyword matched
// recipes of a blended colour wash and CSS filter functions.
package filter

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/user/hemostyle/pkg/catalog"
	"github.com/user/hemostyle/pkg/pipeline"
	"github.com/user/hemostyle/pkg/ports"
)

// Apply recolours img with the recipe selected by directive keywords.
func Apply(img image.Image, directive string) *image.NRGBA {
	return ApplyRecipe(img, Match(directive))
}

// ApplyRecipe recolours img with an explicit recipe.
func ApplyRecipe(img image.Image, id catalog.RecipeID) *image.NRGBA {
	r, _ := Lookup(id)
	return r.Apply(img)
}

// Apply runs the recipe on img. The result has the same size as img; an
// identity recipe returns a pixel-identical copy.
func (r Recipe) Apply(img image.Image) *image.NRGBA {
	if r.IsIdentity() {
		return imaging.Clone(img)
	}

	mats := make([]affine, len(r.Filters))
	for i, f := range r.Filters {
		mats[i] = f.matrix()
	}
	wash := r.Wash

	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		red := float64(c.R) / 255
		green := float64(c.G) / 255
		blue := float64(c.B) / 255
		alpha := float64(c.A) / 255

		if wash != nil {
			red, green, blue, alpha = wash.apply(red, green, blue, alpha)
		}
		for _, m := range mats {
			red, green, blue = m.apply(red, green, blue)
		}

		return color.NRGBA{
			R: to8(red),
			G: to8(green),
			B: to8(blue),
			A: to8(alpha),
		}
	})
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

// Stage applies a local recipe to a photo.
type Stage struct {
	logger ports.Logger
}

// NewStage creates a new filter stage.
func NewStage(logger ports.Logger) *Stage {
	return &Stage{
		logger: logger.WithComponent("filter"),
	}
}

// Execute resolves the recipe and recolours the image.
// An explicit input.Recipe wins over keyword matching of input.Directive.
func (s *Stage) Execute(ctx context.Context, input pipeline.FilterInput) (pipeline.FilterResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.FilterResult{}, err
	}
	if input.Image == nil {
		return pipeline.FilterResult{}, errors.New("filter: no image")
	}

	id := input.Recipe
	if id == "" {
		id = Match(input.Directive)
		s.logger.Debug("Directive matched recipe %s", id)
	}
	recipe, ok := Lookup(id)
	if !ok {
		s.logger.Warn("Unknown recipe %s, passing image through", id)
	}

	b := input.Image.Bounds()
	s.logger.Debug("Applying recipe %s to %dx%d image", recipe.ID, b.Dx(), b.Dy())

	return pipeline.FilterResult{
		Image:  recipe.Apply(input.Image),
		Recipe: recipe.ID,
	}, nil
}

var _ pipeline.Stage[pipeline.FilterInput, pipeline.FilterResult] = (*Stage)(nil)
