// Package orchestrator coordinates the pipeline stages.
package orchestrator

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"path/filepath"
	"strings"
	"time"

	"github.com/ideamans/go-l10n"

	"github.com/user/hemostyle/pkg/catalog"
	"github.com/user/hemostyle/pkg/imagesource"
	"github.com/user/hemostyle/pkg/pipeline"
	"github.com/user/hemostyle/pkg/ports"
	"github.com/user/hemostyle/pkg/stages/batch"
)

// Config contains everything needed for one CLI run.
type Config struct {
	// Input
	InputPath string

	// Output
	OutputPath string
	// StyledPath optionally receives the styled photo before text is added.
	StyledPath string
	Format     ports.ImageFormat

	// Style; empty StyleID keeps the photo as is.
	StyleID string
	Mode    pipeline.TransformMode

	// Canvas
	AspectRatio catalog.AspectRatio
	Overlay     pipeline.TextOverlay
}

// DefaultConfig returns a Config with the editor defaults.
func DefaultConfig() Config {
	return Config{
		Format:      ports.FormatPNG,
		Mode:        pipeline.ModeLocal,
		AspectRatio: catalog.Aspect16x9,
		Overlay:     pipeline.DefaultTextOverlay(),
	}
}

// Orchestrator coordinates the execution of the pipeline stages.
type Orchestrator struct {
	transformStage pipeline.Stage[pipeline.TransformInput, pipeline.TransformResult]
	composeStage   pipeline.Stage[pipeline.ComposeInput, pipeline.ComposeResult]
	exportStage    pipeline.Stage[pipeline.ExportInput, pipeline.ExportResult]
	decoder        *imagesource.Decoder
	fs             ports.FileSystem
	sink           ports.DebugSink
	logger         ports.Logger
}

// New creates a new Orchestrator.
func New(
	transformStage pipeline.Stage[pipeline.TransformInput, pipeline.TransformResult],
	composeStage pipeline.Stage[pipeline.ComposeInput, pipeline.ComposeResult],
	exportStage pipeline.Stage[pipeline.ExportInput, pipeline.ExportResult],
	fs ports.FileSystem,
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		transformStage: transformStage,
		composeStage:   composeStage,
		exportStage:    exportStage,
		decoder:        imagesource.NewDecoder(),
		fs:             fs,
		sink:           sink,
		logger:         logger,
	}
}

// SetMaxPixels replaces the decoder with one rejecting images larger than n
// pixels. Call it before the orchestrator is shared.
func (o *Orchestrator) SetMaxPixels(n int) {
	o.decoder = imagesource.NewDecoder(imagesource.WithMaxPixels(n))
}

// Decode decodes an uploaded photo, reusing the previous result when the
// bytes are unchanged.
func (o *Orchestrator) Decode(data []byte) (imagesource.RasterImage, error) {
	img, err := o.decoder.Decode(data)
	if err != nil {
		return imagesource.RasterImage{}, err
	}
	o.saveSource(img)
	return img, nil
}

// DecodeDataURI decodes a photo uploaded as a data URI.
func (o *Orchestrator) DecodeDataURI(uri string) (imagesource.RasterImage, error) {
	img, err := o.decoder.DecodeDataURI(uri)
	if err != nil {
		return imagesource.RasterImage{}, err
	}
	o.saveSource(img)
	return img, nil
}

func (o *Orchestrator) saveSource(img imagesource.RasterImage) {
	if !o.sink.Enabled() {
		return
	}
	if err := o.sink.SaveSource(img.Image); err != nil {
		o.logger.Warn(l10n.F("Failed to save debug output: %s", err))
	}
}

// Style restyles a decoded photo with a catalog preset.
func (o *Orchestrator) Style(ctx context.Context, src imagesource.RasterImage, style catalog.StylePreset, mode pipeline.TransformMode) (pipeline.TransformResult, error) {
	o.logger.Info(l10n.F("Applying style %s (%s mode)", style.ID, mode))
	result, err := o.transformStage.Execute(ctx, pipeline.TransformInput{
		Source:     src.Image,
		SourceData: src.Data,
		SourceMIME: src.MIMEType(),
		Style:      style,
		Mode:       mode,
	})
	if err != nil {
		o.logger.Error(l10n.F("Failed to apply style: %s", err))
		return pipeline.TransformResult{}, fmt.Errorf("transform stage: %w", err)
	}
	if result.FellBack {
		o.logger.Warn(l10n.F("Used local filter %s instead of the generative service", result.Recipe))
	}
	if o.sink.Enabled() {
		if err := o.sink.SaveStyled(result.Image); err != nil {
			o.logger.Warn(l10n.F("Failed to save debug output: %s", err))
		}
	}
	return result, nil
}

// RenderOutput is a composed and encoded canvas.
type RenderOutput struct {
	Compose pipeline.ComposeResult
	Export  pipeline.ExportResult
}

// Render composes the photo with its overlay and encodes the canvas.
func (o *Orchestrator) Render(ctx context.Context, in pipeline.ComposeInput, format ports.ImageFormat) (RenderOutput, error) {
	composed, err := o.composeStage.Execute(ctx, in)
	if err != nil {
		o.logger.Error(l10n.F("Failed to compose canvas: %s", err))
		return RenderOutput{}, fmt.Errorf("compose stage: %w", err)
	}
	o.logger.Info(l10n.F("Canvas composed: %dx%d, %d text lines", composed.Canvas.Width, composed.Canvas.Height, len(composed.Layout.Lines)))

	exported, err := o.exportStage.Execute(ctx, pipeline.ExportInput{Canvas: composed.Canvas, Format: format})
	if err != nil {
		o.logger.Error(l10n.F("Failed to export image: %s", err))
		return RenderOutput{}, fmt.Errorf("export stage: %w", err)
	}
	return RenderOutput{Compose: composed, Export: exported}, nil
}

// Run executes the complete pipeline: read, decode, style, compose, export, write.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	o.logger.Info(l10n.T("Starting pipeline"))
	result := RunResult{
		InputPath:   config.InputPath,
		AspectRatio: config.AspectRatio,
		Format:      config.Format,
	}

	// 1. Read, decode and style the source photo
	photo, err := o.prepare(ctx, config, &result)
	if err != nil {
		return RunResult{}, err
	}

	// 2. Compose and export
	start := time.Now()
	out, err := o.Render(ctx, pipeline.ComposeInput{
		Image:       photo,
		Overlay:     config.Overlay,
		AspectRatio: config.AspectRatio,
	}, config.Format)
	if err != nil {
		return RunResult{}, err
	}
	result.RenderMs = time.Since(start).Milliseconds()

	// 3. Write output file
	outputPath := config.OutputPath
	if outputPath == "" {
		outputPath = out.Export.Filename
	}
	if err := o.write(outputPath, out.Export.Data); err != nil {
		return RunResult{}, err
	}
	o.logger.Info(l10n.F("Output saved to %s", outputPath))
	o.logger.Info(l10n.T("Pipeline completed successfully"))

	result.fill(outputPath, out.Compose, out.Export)
	return result, nil
}

// RunAll renders the photo once per aspect ratio in parallel. Each output
// path is OutputPath (or the default filename) with the ratio appended to
// the base name, e.g. "thumb-16x9.png".
func (o *Orchestrator) RunAll(ctx context.Context, config Config, ratios []catalog.AspectRatio) ([]RunResult, error) {
	o.logger.Info(l10n.T("Starting pipeline"))
	if len(ratios) == 0 {
		return nil, fmt.Errorf("%w: no aspect ratios", pipeline.ErrInvalidInput)
	}
	for _, a := range ratios {
		if !a.Valid() {
			return nil, fmt.Errorf("%w: %q", catalog.ErrUnknownAspectRatio, a)
		}
	}

	base := RunResult{InputPath: config.InputPath, Format: config.Format}
	photo, err := o.prepare(ctx, config, &base)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	batched, err := batch.NewStage(o.composeStage, o.exportStage, o.logger, 0).Execute(ctx, pipeline.BatchInput{
		Image:        photo,
		Overlay:      config.Overlay,
		AspectRatios: ratios,
		Format:       config.Format,
	})
	if err != nil {
		o.logger.Error(l10n.F("Failed to compose canvas: %s", err))
		return nil, fmt.Errorf("batch stage: %w", err)
	}
	elapsed := time.Since(start).Milliseconds()

	results := make([]RunResult, 0, len(batched.Items))
	for _, item := range batched.Items {
		outputPath := config.OutputPath
		if outputPath == "" {
			outputPath = item.Export.Filename
		}
		outputPath = aspectPath(outputPath, item.AspectRatio)
		if err := o.write(outputPath, item.Export.Data); err != nil {
			return nil, err
		}
		o.logger.Info(l10n.F("Output saved to %s", outputPath))

		r := base
		r.AspectRatio = item.AspectRatio
		r.RenderMs = elapsed
		r.fill(outputPath, item.Compose, item.Export)
		results = append(results, r)
	}
	o.logger.Info(l10n.T("Pipeline completed successfully"))
	return results, nil
}

// aspectPath inserts the ratio before the extension: out.png becomes out-16x9.png.
func aspectPath(path string, a catalog.AspectRatio) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + strings.ReplaceAll(a.String(), ":", "x") + ext
}

// prepare reads, decodes and optionally styles the input photo.
func (o *Orchestrator) prepare(ctx context.Context, config Config, result *RunResult) (image.Image, error) {
	src, err := o.load(config.InputPath, result)
	if err != nil {
		return nil, err
	}
	if config.StyleID == "" {
		return src.Image, nil
	}

	style, err := catalog.StyleByID(config.StyleID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, config.StyleID)
	}
	start := time.Now()
	styled, err := o.Style(ctx, src, style, config.Mode)
	if err != nil {
		return nil, err
	}
	result.TransformMs = time.Since(start).Milliseconds()
	result.Style = style
	result.Backend = styled.Backend
	result.Recipe = styled.Recipe
	result.FellBack = styled.FellBack

	if config.StyledPath != "" {
		if _, err := o.writeStyled(ctx, config.StyledPath, styled.Image); err != nil {
			return nil, err
		}
	}
	return styled.Image, nil
}

// Restyle reads the input photo, applies the configured style and writes
// the styled photo to OutputPath without composing a canvas.
func (o *Orchestrator) Restyle(ctx context.Context, config Config) (RunResult, error) {
	if config.StyleID == "" {
		return RunResult{}, fmt.Errorf("%w: no style selected", pipeline.ErrInvalidInput)
	}
	if config.OutputPath == "" {
		return RunResult{}, fmt.Errorf("%w: no output path", pipeline.ErrInvalidInput)
	}
	style, err := catalog.StyleByID(config.StyleID)
	if err != nil {
		return RunResult{}, fmt.Errorf("%w: %q", err, config.StyleID)
	}

	result := RunResult{InputPath: config.InputPath}
	src, err := o.load(config.InputPath, &result)
	if err != nil {
		return RunResult{}, err
	}

	start := time.Now()
	styled, err := o.Style(ctx, src, style, config.Mode)
	if err != nil {
		return RunResult{}, err
	}
	result.TransformMs = time.Since(start).Milliseconds()
	result.Style = style
	result.Backend = styled.Backend
	result.Recipe = styled.Recipe
	result.FellBack = styled.FellBack

	exported, err := o.writeStyled(ctx, config.OutputPath, styled.Image)
	if err != nil {
		return RunResult{}, err
	}
	o.logger.Info(l10n.F("Output saved to %s", config.OutputPath))

	b := styled.Image.Bounds()
	result.OutputPath = config.OutputPath
	result.CanvasWidth, result.CanvasHeight = b.Dx(), b.Dy()
	result.Format = exported.format
	result.OutputBytes = int64(len(exported.data))
	result.Hash = exported.hash
	return result, nil
}

// load reads and decodes the source photo, recording its details in result.
func (o *Orchestrator) load(path string, result *RunResult) (imagesource.RasterImage, error) {
	data, err := o.fs.ReadFile(path)
	if err != nil {
		o.logger.Error(l10n.F("Failed to read input: %s", err))
		return imagesource.RasterImage{}, fmt.Errorf("read input: %w", err)
	}
	src, err := o.Decode(data)
	if err != nil {
		o.logger.Error(l10n.F("Failed to decode input: %s", err))
		return imagesource.RasterImage{}, err
	}
	result.SourceWidth, result.SourceHeight = src.Width, src.Height
	result.SourceFormat = src.Format
	result.SourceBytes = int64(len(data))
	o.logger.Info(l10n.F("Loaded %dx%d %s photo", src.Width, src.Height, src.Format))
	return src, nil
}

type styledFile struct {
	format ports.ImageFormat
	data   []byte
	hash   string
}

// writeStyled encodes the styled photo using the output format of its extension.
func (o *Orchestrator) writeStyled(ctx context.Context, path string, img image.Image) (styledFile, error) {
	format := ports.FormatPNG
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".jpg" || ext == ".jpeg" {
		format = ports.FormatJPEG
	}
	b := img.Bounds()
	exported, err := o.exportStage.Execute(ctx, pipeline.ExportInput{
		Canvas: pipeline.CanvasState{Width: b.Dx(), Height: b.Dy(), Image: toRGBA(img)},
		Format: format,
	})
	if err != nil {
		return styledFile{}, fmt.Errorf("export styled photo: %w", err)
	}
	if err := o.write(path, exported.Data); err != nil {
		return styledFile{}, err
	}
	return styledFile{format: format, data: exported.Data, hash: exported.Hash}, nil
}

func (o *Orchestrator) write(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := o.fs.MkdirAll(dir); err != nil {
			o.logger.Error(l10n.F("Failed to write output: %s", err))
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := o.fs.WriteFile(path, data); err != nil {
		o.logger.Error(l10n.F("Failed to write output: %s", err))
		return fmt.Errorf("write output: %w", err)
	}
	return nil
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

// RunResult contains the results of a pipeline run for summary generation.
type RunResult struct {
	// Source photo
	InputPath    string
	SourceWidth  int
	SourceHeight int
	SourceFormat string
	SourceBytes  int64

	// Style
	Style       catalog.StylePreset
	Backend     string
	Recipe      catalog.RecipeID
	FellBack    bool
	TransformMs int64

	// Canvas
	AspectRatio  catalog.AspectRatio
	CanvasWidth  int
	CanvasHeight int
	Scale        float64
	Lines        []string
	RenderMs     int64

	// Output
	OutputPath  string
	Format      ports.ImageFormat
	OutputBytes int64
	Hash        string
}

// fill records the canvas and output of a render.
func (r *RunResult) fill(outputPath string, composed pipeline.ComposeResult, exported pipeline.ExportResult) {
	r.OutputPath = outputPath
	r.CanvasWidth = composed.Canvas.Width
	r.CanvasHeight = composed.Canvas.Height
	r.Scale = composed.Layout.Scale
	r.Lines = nil
	for _, l := range composed.Layout.Lines {
		r.Lines = append(r.Lines, l.Text)
	}
	r.OutputBytes = int64(len(exported.Data))
	r.Hash = exported.Hash
}
