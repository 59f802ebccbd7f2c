// Package transform implements the style transform stage: a generative
// backend with at most one fallback to the local filter recipes.
package transform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"

	"github.com/user/hemostyle/pkg/catalog"
	"github.com/user/hemostyle/pkg/imagesource"
	"github.com/user/hemostyle/pkg/pipeline"
	"github.com/user/hemostyle/pkg/ports"
	"github.com/user/hemostyle/pkg/stages/filter"
)

const (
	BackendGenerative = "generative"
	BackendLocal      = "local"
)

var errUnavailable = errors.New("backend not configured")

// Stage restyles the source photo.
type Stage struct {
	transformer ports.StyleTransformer
	local       *filter.Stage
	logger      ports.Logger
}

// NewStage creates a transform stage. transformer may be nil, in which
// case only ModeLocal and ModeAuto (always falling back) succeed.
func NewStage(transformer ports.StyleTransformer, logger ports.Logger) *Stage {
	return &Stage{
		transformer: transformer,
		local:       filter.NewStage(logger),
		logger:      logger.WithComponent("transform"),
	}
}

// Execute applies input.Style according to input.Mode.
func (s *Stage) Execute(ctx context.Context, input pipeline.TransformInput) (pipeline.TransformResult, error) {
	if input.Source == nil {
		return pipeline.TransformResult{}, errors.New("transform: no source image")
	}

	switch input.Mode {
	case pipeline.ModeAPI:
		return s.generative(ctx, input)

	case pipeline.ModeAuto:
		result, err := s.generative(ctx, input)
		if err == nil {
			return result, nil
		}
		var upstream *pipeline.UpstreamTransformError
		if !errors.As(err, &upstream) || ctx.Err() != nil {
			return pipeline.TransformResult{}, err
		}
		s.logger.Warn("Generative transform failed, using local filters: %v", upstream.Err)
		result, err = s.filter(ctx, input)
		result.FellBack = true
		return result, err

	default:
		return s.filter(ctx, input)
	}
}

func (s *Stage) generative(ctx context.Context, input pipeline.TransformInput) (pipeline.TransformResult, error) {
	if s.transformer == nil || !s.transformer.Available() {
		name := "generative"
		if s.transformer != nil {
			name = s.transformer.Name()
		}
		return pipeline.TransformResult{}, &pipeline.UpstreamTransformError{Backend: name, Err: errUnavailable}
	}
	name := s.transformer.Name()

	data, mime := input.SourceData, input.SourceMIME
	if len(data) == 0 {
		var buf bytes.Buffer
		if err := png.Encode(&buf, input.Source); err != nil {
			return pipeline.TransformResult{}, fmt.Errorf("transform: encode source: %w", err)
		}
		data, mime = buf.Bytes(), "image/png"
	}

	s.logger.Debug("Requesting %s transform for style %s", name, input.Style.ID)
	resp, err := s.transformer.Transform(ctx, ports.TransformRequest{
		ImageData: data,
		MIMEType:  mime,
		Directive: input.Style.Directive,
	})
	if err != nil {
		return pipeline.TransformResult{}, &pipeline.UpstreamTransformError{Backend: name, Err: err}
	}

	img, err := imagesource.Decode(resp.ImageData)
	if err != nil {
		return pipeline.TransformResult{}, &pipeline.UpstreamTransformError{Backend: name, Err: err}
	}

	return pipeline.TransformResult{
		Image:   img.Image,
		Backend: BackendGenerative,
		Recipe:  catalog.RecipeNone,
	}, nil
}

func (s *Stage) filter(ctx context.Context, input pipeline.TransformInput) (pipeline.TransformResult, error) {
	res, err := s.local.Execute(ctx, pipeline.FilterInput{
		Image:     input.Source,
		Recipe:    input.Style.Recipe,
		Directive: input.Style.Directive,
	})
	if err != nil {
		return pipeline.TransformResult{}, fmt.Errorf("transform: %w", err)
	}
	return pipeline.TransformResult{
		Image:   res.Image,
		Backend: BackendLocal,
		Recipe:  res.Recipe,
	}, nil
}

var _ pipeline.Stage[pipeline.TransformInput, pipeline.TransformResult] = (*Stage)(nil)
