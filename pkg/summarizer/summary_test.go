package summarizer

import (
	"testing"
	"time"
)

func TestNewSummary(t *testing.T) {
	before := time.Now()
	summary := NewSummary()
	after := time.Now()

	if summary.GeneratedAt.Before(before) || summary.GeneratedAt.After(after) {
		t.Errorf("GeneratedAt should be between %v and %v, got %v",
			before, after, summary.GeneratedAt)
	}
}

func TestBuilder_WithSource(t *testing.T) {
	summary := NewBuilder().
		WithSource(SourceInfo{Path: "in.jpg", Width: 800, Height: 600, Format: "jpeg", Bytes: 2048}).
		Build()

	if summary.Source.Path != "in.jpg" {
		t.Errorf("expected path 'in.jpg', got '%s'", summary.Source.Path)
	}
	if summary.Source.Width != 800 || summary.Source.Height != 600 {
		t.Errorf("expected 800x600, got %dx%d", summary.Source.Width, summary.Source.Height)
	}
}

func TestBuilder_WithStyle(t *testing.T) {
	summary := NewBuilder().
		WithStyle(StyleInfo{ID: "cyberpunk", Backend: "local", Recipe: "cyberpunk", FellBack: true}).
		Build()

	if summary.Style.ID != "cyberpunk" {
		t.Errorf("expected style 'cyberpunk', got '%s'", summary.Style.ID)
	}
	if !summary.Style.FellBack {
		t.Error("expected FellBack to be true")
	}
}

func TestBuilder_WithTiming(t *testing.T) {
	summary := NewBuilder().
		WithTiming(1200, 35).
		Build()

	if summary.Timing.TransformMs != 1200 {
		t.Errorf("expected TransformMs 1200, got %d", summary.Timing.TransformMs)
	}
	if summary.Timing.RenderMs != 35 {
		t.Errorf("expected RenderMs 35, got %d", summary.Timing.RenderMs)
	}
}

func TestBuilder_Chaining(t *testing.T) {
	summary := NewBuilder().
		WithSource(SourceInfo{Width: 800, Height: 600}).
		WithCanvas(CanvasInfo{AspectRatio: "16:9", Width: 1200, Height: 675, Scale: 1.5}).
		WithOutput(OutputInfo{Path: "out.png", Format: "png", Bytes: 4096, Hash: "abc"}).
		Build()

	if summary.Canvas.Width != 1200 || summary.Canvas.Height != 675 {
		t.Errorf("unexpected canvas %dx%d", summary.Canvas.Width, summary.Canvas.Height)
	}
	if summary.Output.Hash != "abc" {
		t.Errorf("expected hash 'abc', got '%s'", summary.Output.Hash)
	}
}
