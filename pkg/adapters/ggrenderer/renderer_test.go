package ggrenderer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/user/hemostyle/pkg/catalog"
	"github.com/user/hemostyle/pkg/ports"
)

func TestRenderer_CreateCanvas(t *testing.T) {
	r := New()

	canvas, err := r.CreateCanvas(100, 60, color.White)
	if err != nil {
		t.Fatalf("CreateCanvas failed: %v", err)
	}

	bounds := canvas.ToImage().Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 60 {
		t.Errorf("expected 100x60, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderer_CreateCanvasInvalidSize(t *testing.T) {
	r := New()

	if _, err := r.CreateCanvas(0, 10, nil); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := r.CreateCanvas(10, -1, nil); err == nil {
		t.Error("expected error for negative height")
	}
}

func TestRenderer_EncodeJPEG(t *testing.T) {
	r := New()

	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	data, err := r.EncodeImage(img, ports.FormatJPEG, 0)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty data")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeConfig failed: %v", err)
	}
	if format != "jpeg" || cfg.Width != 50 || cfg.Height != 50 {
		t.Errorf("expected 50x50 jpeg, got %dx%d %s", cfg.Width, cfg.Height, format)
	}
}

func TestRenderer_EncodePNG(t *testing.T) {
	r := New()

	img := image.NewRGBA(image.Rect(0, 0, 30, 30))
	img.Set(3, 4, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	data, err := r.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	got := color.RGBAModel.Convert(decoded.At(3, 4)).(color.RGBA)
	if got != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("pixel mismatch after PNG roundtrip: %v", got)
	}
}

func TestRenderer_EncodeUnsupportedFormat(t *testing.T) {
	r := New()

	if _, err := r.EncodeImage(image.NewRGBA(image.Rect(0, 0, 1, 1)), ports.ImageFormat(99), 0); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestCanvas_DrawImageScaledCoversCanvas(t *testing.T) {
	r := New()
	canvas, err := r.CreateCanvas(40, 40, color.Black)
	if err != nil {
		t.Fatal(err)
	}

	src := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			src.Set(x, y, color.RGBA{G: 255, A: 255})
		}
	}

	// 20x10 scaled by 4 is 80x40, centred with 20px overflow on both sides.
	canvas.DrawImageScaled(src, -20, 0, 80, 40)

	out := canvas.ToImage()
	for _, p := range []image.Point{{0, 0}, {39, 0}, {0, 39}, {39, 39}, {20, 20}} {
		_, g, _, _ := out.At(p.X, p.Y).RGBA()
		if g>>8 < 200 {
			t.Errorf("pixel %v not covered by scaled image (g=%d)", p, g>>8)
		}
	}
}

func TestCanvas_MeasureText(t *testing.T) {
	r := New()
	canvas, err := r.CreateCanvas(10, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	style := ports.TextStyle{FontSize: 60}

	short, h := canvas.MeasureText("Hi", style)
	long, _ := canvas.MeasureText("Hello World", style)

	if short <= 0 || h <= 0 {
		t.Fatalf("expected positive metrics, got w=%f h=%f", short, h)
	}
	if long <= short {
		t.Errorf("expected longer text to be wider: %f <= %f", long, short)
	}
}

func TestCanvas_DrawTextFillStrokeShadow(t *testing.T) {
	r := New()
	canvas, err := r.CreateCanvas(400, 120, color.RGBA{B: 255, A: 255})
	if err != nil {
		t.Fatal(err)
	}

	style := ports.TextStyle{
		FontSize: 60,
		Color:    color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Align:    ports.AlignCenter,
		Shadow:   &ports.Shadow{Color: color.Black, Blur: 15, OffsetX: 2, OffsetY: 2},
		Stroke:   &ports.Stroke{Color: color.Black, Width: 4},
	}
	if err := canvas.DrawText("HH", 200, 90, style); err != nil {
		t.Fatalf("DrawText failed: %v", err)
	}

	out := canvas.ToImage()
	white, dark := 0, 0
	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := out.At(x, y).RGBA()
			if r>>8 > 240 && g>>8 > 240 && bl>>8 > 240 {
				white++
			}
			if bl>>8 < 60 {
				dark++
			}
		}
	}
	if white == 0 {
		t.Error("expected filled text pixels")
	}
	if dark == 0 {
		t.Error("expected stroke or shadow pixels")
	}

	// Far corner is untouched background.
	_, _, cb, _ := out.At(0, 0).RGBA()
	if cb>>8 != 255 {
		t.Errorf("expected background at corner, got blue=%d", cb>>8)
	}
}

func TestCanvas_DrawTextEmpty(t *testing.T) {
	r := New()
	canvas, err := r.CreateCanvas(10, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := canvas.DrawText("", 5, 5, ports.TextStyle{FontSize: 12}); err != nil {
		t.Errorf("expected nil error for empty text, got %v", err)
	}
}

func TestCanvas_DrawTextMissingFont(t *testing.T) {
	r := New()
	canvas, err := r.CreateCanvas(10, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	style := ports.TextStyle{FontSize: 12, FontPath: "/nonexistent/font.ttf", Color: color.White}
	if err := canvas.DrawText("x", 5, 5, style); err == nil {
		t.Error("expected error for missing font file")
	}
}

func TestCanvas_DrawTextDeterministic(t *testing.T) {
	draw := func() []uint8 {
		r := New()
		canvas, err := r.CreateCanvas(300, 100, color.Gray{Y: 128})
		if err != nil {
			t.Fatal(err)
		}
		style := ports.TextStyle{
			FontSize: 40,
			Color:    color.RGBA{R: 255, G: 200, A: 255},
			Align:    ports.AlignCenter,
			Shadow:   &ports.Shadow{Color: color.Black, Blur: 15, OffsetX: 2, OffsetY: 2},
			Stroke:   &ports.Stroke{Color: color.Black, Width: 40.0 / 15},
		}
		if err := canvas.DrawText("Style", 150, 70, style); err != nil {
			t.Fatal(err)
		}
		return canvas.ToImage().(*image.RGBA).Pix
	}

	a, b := draw(), draw()
	if len(a) != len(b) {
		t.Fatal("length mismatch")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("pixel byte %d differs: %d != %d", i, a[i], b[i])
		}
	}
}

func TestCanvas_DrawTextMissingGlyphs(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"suggested title", catalog.SuggestTitles()[0], true},
		{"emoji only", "\U0001F525", true},
		{"latin", "Viral Look!", false},
		{"zero width joiner", "Look\u200dBook", false},
		{"variation selector", "Look\uFE0F", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			canvas, err := r.CreateCanvas(400, 100, color.Black)
			if err != nil {
				t.Fatal(err)
			}
			style := ports.TextStyle{FontSize: 40, Color: color.White}

			err = canvas.DrawText(tt.text, 10, 70, style)
			if tt.wantErr {
				if !errors.Is(err, ErrMissingGlyphs) {
					t.Errorf("expected ErrMissingGlyphs, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCanvas_DrawTextMissingGlyphsLeavesCanvasUntouched(t *testing.T) {
	r := New()
	canvas, err := r.CreateCanvas(200, 80, color.Black)
	if err != nil {
		t.Fatal(err)
	}
	style := ports.TextStyle{
		FontSize: 40,
		Color:    color.White,
		Shadow:   &ports.Shadow{Color: color.RGBA{R: 255, A: 255}, Blur: 4},
	}

	if err := canvas.DrawText(catalog.SuggestTitles()[0], 10, 60, style); err == nil {
		t.Fatal("expected error")
	}
	for _, p := range canvas.ToImage().(*image.RGBA).Pix {
		if p != 0 && p != 255 {
			t.Fatal("expected no pixels drawn")
		}
	}
}

func TestShadowBounds(t *testing.T) {
	run := glyphRun{width: 100, ascent: 30, descent: 10}

	tests := []struct {
		name        string
		x, baseline float64
		pad         float64
	}{
		{"positive", 10.5, 50.5, 8},
		{"integral", 20, 60, 4},
		{"negative fraction", -7.3, 20.2, 5},
		{"left of canvas", -150.75, -3.4, 12.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := shadowBounds(run, tt.x, tt.baseline, tt.pad)

			wantLeft := math.Floor(tt.x-tt.pad) - 1
			wantTop := math.Floor(tt.baseline-run.ascent-tt.pad) - 1
			if float64(b.Min.X) != wantLeft || float64(b.Min.Y) != wantTop {
				t.Errorf("expected origin (%v, %v), got %v", wantLeft, wantTop, b.Min)
			}
			if float64(b.Max.X) < tt.x+run.width+tt.pad+1 || float64(b.Max.Y) < tt.baseline+run.descent+tt.pad+1 {
				t.Errorf("layer %v does not cover the padded run", b)
			}
		})
	}
}

func TestCanvas_DrawTextShadowTranslatesWithText(t *testing.T) {
	draw := func(x float64) *image.RGBA {
		r := New()
		canvas, err := r.CreateCanvas(200, 100, color.Black)
		if err != nil {
			t.Fatal(err)
		}
		style := ports.TextStyle{
			FontSize: 50,
			Color:    color.RGBA{G: 255, A: 255},
			Shadow:   &ports.Shadow{Color: color.White, Blur: 6, OffsetX: 2, OffsetY: 2},
		}
		if err := canvas.DrawText("WW", x, 70, style); err != nil {
			t.Fatal(err)
		}
		return canvas.ToImage().(*image.RGBA)
	}

	// The same text 40px further left must paint the same pixels shifted by
	// 40, including where it starts left of the canvas edge.
	a, b := draw(30.5), draw(-9.5)
	near := func(p, q uint8) bool { return p-q <= 2 || q-p <= 2 }
	for y := 0; y < 100; y++ {
		for x := 0; x < 160; x++ {
			pa, pb := a.RGBAAt(x+40, y), b.RGBAAt(x, y)
			if !near(pa.R, pb.R) || !near(pa.G, pb.G) || !near(pa.B, pb.B) {
				t.Fatalf("pixel (%d,%d) differs after shift: %v != %v", x, y, pb, pa)
			}
		}
	}
}
