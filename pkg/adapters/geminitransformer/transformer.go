// Package geminitransformer restyles photos with a Gemini image model.
package geminitransformer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/user/hemostyle/pkg/ports"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-2.5-flash-image"
	// DefaultTimeout bounds a single transform request.
	DefaultTimeout = 60 * time.Second
)

// ErrNoCredentials is returned when no API key is configured.
var ErrNoCredentials = errors.New("gemini: no API key configured")

// ErrNoImage is returned when the response carries no inline image.
var ErrNoImage = errors.New("gemini: response contained no image")

// generateFunc sends contents to a model. It is replaced in tests.
type generateFunc func(ctx context.Context, model string, contents []*genai.Content) (*genai.GenerateContentResponse, error)

// Transformer implements ports.StyleTransformer.
type Transformer struct {
	apiKey   string
	model    string
	timeout  time.Duration
	generate generateFunc
}

// Options configures a Transformer.
type Options struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// New creates a Transformer. Empty model and timeout take the defaults.
func New(opts Options) *Transformer {
	model := strings.TrimPrefix(strings.TrimSpace(opts.Model), "models/")
	if model == "" {
		model = DefaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	t := &Transformer{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   model,
		timeout: timeout,
	}
	t.generate = t.generateWithClient
	return t
}

// Name returns the backend name.
func (t *Transformer) Name() string {
	return "gemini"
}

// Available reports whether an API key is configured.
func (t *Transformer) Available() bool {
	return t != nil && t.apiKey != ""
}

// Transform sends the photo inline with a prompt built from the directive
// and returns the first inline image of the first candidate.
func (t *Transformer) Transform(ctx context.Context, req ports.TransformRequest) (ports.TransformResponse, error) {
	if !t.Available() {
		return ports.TransformResponse{}, ErrNoCredentials
	}
	if len(req.ImageData) == 0 {
		return ports.TransformResponse{}, errors.New("gemini: empty source image")
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	mime := req.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{Data: req.ImageData, MIMEType: mime}},
			{Text: BuildPrompt(req.Directive)},
		},
	}}

	resp, err := t.generate(ctx, t.model, contents)
	if err != nil {
		return ports.TransformResponse{}, fmt.Errorf("gemini: generate: %w", err)
	}
	return firstImage(resp)
}

func (t *Transformer) generateWithClient(ctx context.Context, model string, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  t.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client.Models.GenerateContent(ctx, model, contents, nil)
}

// BuildPrompt turns a style directive into an image edit instruction.
func BuildPrompt(directive string) string {
	directive = strings.TrimSpace(directive)
	if directive == "" {
		return "Enhance this photo while keeping the person's face and identity unchanged."
	}
	return "Transform this photo of a person: " + directive +
		". Keep the person's face and identity unchanged. Return only the edited image."
}

func firstImage(resp *genai.GenerateContentResponse) (ports.TransformResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return ports.TransformResponse{}, ErrNoImage
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ports.TransformResponse{}, ErrNoImage
	}
	for _, part := range c.Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mime := strings.TrimSpace(part.InlineData.MIMEType)
		if mime == "" {
			mime = "image/png"
		}
		return ports.TransformResponse{ImageData: part.InlineData.Data, MIMEType: mime}, nil
	}
	return ports.TransformResponse{}, ErrNoImage
}

var _ ports.StyleTransformer = (*Transformer)(nil)
