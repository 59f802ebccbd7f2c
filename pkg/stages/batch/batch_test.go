package batch

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/user/hemostyle/pkg/adapters/logger"
	"github.com/user/hemostyle/pkg/catalog"
	"github.com/user/hemostyle/pkg/pipeline"
	"github.com/user/hemostyle/pkg/ports"
)

type fakeCompose struct {
	mu      sync.Mutex
	calls   int
	failFor catalog.AspectRatio
	err     error
}

func (f *fakeCompose) Execute(ctx context.Context, in pipeline.ComposeInput) (pipeline.ComposeResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if in.AspectRatio == f.failFor {
		return pipeline.ComposeResult{}, f.err
	}
	w, h := in.AspectRatio.Size()
	return pipeline.ComposeResult{
		Canvas: pipeline.CanvasState{Width: w, Height: h, Image: image.NewRGBA(image.Rect(0, 0, 1, 1))},
		Layout: pipeline.LayoutResult{Lines: []pipeline.TextLine{{Text: in.Overlay.Content}}},
	}, nil
}

type fakeExport struct{}

func (fakeExport) Execute(ctx context.Context, in pipeline.ExportInput) (pipeline.ExportResult, error) {
	return pipeline.ExportResult{Data: []byte(in.Format.String()), Filename: "hemostyle-edit.png"}, nil
}

func TestStage_Execute(t *testing.T) {
	stage := NewStage(&fakeCompose{}, fakeExport{}, logger.NewNoop(), 2)

	ratios := []catalog.AspectRatio{catalog.Aspect9x16, catalog.Aspect16x9, catalog.Aspect1x1}
	result, err := stage.Execute(context.Background(), pipeline.BatchInput{
		Image:        image.NewRGBA(image.Rect(0, 0, 10, 10)),
		Overlay:      pipeline.TextOverlay{Content: "hello", ColorHex: "#ffffff", FontSizePx: 60},
		AspectRatios: ratios,
		Format:       ports.FormatJPEG,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Items) != len(ratios) {
		t.Fatalf("expected %d items, got %d", len(ratios), len(result.Items))
	}
	for i, item := range result.Items {
		if item.AspectRatio != ratios[i] {
			t.Errorf("item %d: expected %s, got %s", i, ratios[i], item.AspectRatio)
		}
		w, h := ratios[i].Size()
		if item.Compose.Canvas.Width != w || item.Compose.Canvas.Height != h {
			t.Errorf("item %d: expected %dx%d, got %dx%d", i, w, h, item.Compose.Canvas.Width, item.Compose.Canvas.Height)
		}
		if string(item.Export.Data) != ports.FormatJPEG.String() {
			t.Errorf("item %d: expected JPEG export, got %q", i, item.Export.Data)
		}
	}
}

func TestStage_Execute_Empty(t *testing.T) {
	compose := &fakeCompose{}
	stage := NewStage(compose, fakeExport{}, logger.NewNoop(), 0)

	result, err := stage.Execute(context.Background(), pipeline.BatchInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Items == nil || len(result.Items) != 0 {
		t.Errorf("expected empty non-nil items, got %v", result.Items)
	}
	if compose.calls != 0 {
		t.Errorf("expected no compose calls, got %d", compose.calls)
	}
}

func TestStage_Execute_Error(t *testing.T) {
	boom := errors.New("boom")
	stage := NewStage(&fakeCompose{failFor: catalog.Aspect1x1, err: boom}, fakeExport{}, logger.NewNoop(), 1)

	_, err := stage.Execute(context.Background(), pipeline.BatchInput{
		Image:        image.NewRGBA(image.Rect(0, 0, 10, 10)),
		AspectRatios: []catalog.AspectRatio{catalog.Aspect16x9, catalog.Aspect1x1, catalog.Aspect9x16},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected compose error, got %v", err)
	}
}

func TestStage_Execute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stage := NewStage(&fakeCompose{}, fakeExport{}, logger.NewNoop(), 2)
	_, err := stage.Execute(ctx, pipeline.BatchInput{
		Image:        image.NewRGBA(image.Rect(0, 0, 10, 10)),
		AspectRatios: []catalog.AspectRatio{catalog.Aspect16x9, catalog.Aspect1x1},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
