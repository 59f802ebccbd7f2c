package geminitransformer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/user/hemostyle/pkg/ports"
)

func TestNew_Defaults(t *testing.T) {
	tr := New(Options{APIKey: " key ", Model: "models/custom-image"})

	if tr.model != "custom-image" {
		t.Errorf("expected models/ prefix trimmed, got %s", tr.model)
	}
	if tr.timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", tr.timeout)
	}
	if !tr.Available() {
		t.Error("expected transformer to be available with a key")
	}
	if New(Options{}).model != DefaultModel {
		t.Error("expected default model")
	}
}

func TestTransform_NoCredentials(t *testing.T) {
	tr := New(Options{})
	if tr.Available() {
		t.Fatal("expected unavailable without a key")
	}
	_, err := tr.Transform(context.Background(), ports.TransformRequest{ImageData: []byte{1}})
	if !errors.Is(err, ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}

func TestTransform_SendsImageAndPrompt(t *testing.T) {
	tr := New(Options{APIKey: "k", Timeout: time.Second})

	var gotModel string
	var gotContents []*genai.Content
	tr.generate = func(ctx context.Context, model string, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected request deadline")
		}
		gotModel, gotContents = model, contents
		return &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "here you go"},
					{InlineData: &genai.Blob{Data: []byte("png-bytes"), MIMEType: "image/png"}},
				}},
			}},
		}, nil
	}

	resp, err := tr.Transform(context.Background(), ports.TransformRequest{
		ImageData: []byte("src"),
		MIMEType:  "image/png",
		Directive: "neon lights",
	})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if string(resp.ImageData) != "png-bytes" || resp.MIMEType != "image/png" {
		t.Errorf("unexpected response %+v", resp)
	}
	if gotModel != DefaultModel {
		t.Errorf("expected default model, got %s", gotModel)
	}
	if len(gotContents) != 1 || len(gotContents[0].Parts) != 2 {
		t.Fatalf("unexpected contents %+v", gotContents)
	}
	if string(gotContents[0].Parts[0].InlineData.Data) != "src" {
		t.Error("expected source image as first part")
	}
	if !strings.Contains(gotContents[0].Parts[1].Text, "neon lights") {
		t.Errorf("expected directive in prompt, got %q", gotContents[0].Parts[1].Text)
	}
}

func TestTransform_Errors(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		err  error
		want error
	}{
		{"upstream error", nil, errors.New("quota"), nil},
		{"no candidates", &genai.GenerateContentResponse{}, nil, ErrNoImage},
		{"text only", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "sorry"}}},
		}}}, nil, ErrNoImage},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}, nil, ErrNoImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(Options{APIKey: "k"})
			tr.generate = func(context.Context, string, []*genai.Content) (*genai.GenerateContentResponse, error) {
				return tt.resp, tt.err
			}
			_, err := tr.Transform(context.Background(), ports.TransformRequest{ImageData: []byte{1}})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFirstImage_DefaultMIME(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{{InlineData: &genai.Blob{Data: []byte{1, 2}}}}},
	}}}
	got, err := firstImage(resp)
	if err != nil {
		t.Fatal(err)
	}
	if got.MIMEType != "image/png" {
		t.Errorf("expected image/png default, got %s", got.MIMEType)
	}
}

func TestBuildPrompt(t *testing.T) {
	if p := BuildPrompt("  vogue cover "); !strings.Contains(p, "vogue cover.") {
		t.Errorf("unexpected prompt %q", p)
	}
	if p := BuildPrompt(""); p == "" {
		t.Error("expected fallback prompt")
	}
}
