package juxtapose

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/user/hemostyle/pkg/adapters/logger"
	"github.com/user/hemostyle/pkg/imagesource"
	"github.com/user/hemostyle/pkg/ports"
)

// Input holds the paths for a comparison.
type Input struct {
	BeforePath string
	AfterPath  string
	OutputPath string
}

// Result describes the written comparison image.
type Result struct {
	OutputPath string
	Width      int
	Height     int
	Bytes      int
}

// Stage reads two photos, composes them and writes the comparison.
type Stage struct {
	fs     ports.FileSystem
	logger ports.Logger
	opts   Options
}

// New creates a juxtapose stage.
func New(fs ports.FileSystem, log ports.Logger, opts Options) *Stage {
	if log == nil {
		log = logger.NewNoop()
	}
	return &Stage{
		fs:     fs,
		logger: log.WithComponent("juxtapose"),
		opts:   opts,
	}
}

// Execute runs the comparison. The output format follows the output file extension.
func (s *Stage) Execute(ctx context.Context, input Input) (Result, error) {
	format, err := imaging.FormatFromFilename(input.OutputPath)
	if err != nil {
		return Result{}, fmt.Errorf("output %s: %w", input.OutputPath, err)
	}

	before, err := s.load(input.BeforePath)
	if err != nil {
		return Result{}, fmt.Errorf("read before photo: %w", err)
	}
	after, err := s.load(input.AfterPath)
	if err != nil {
		return Result{}, fmt.Errorf("read after photo: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	s.logger.Debug("Before %dx%d, after %dx%d", before.Width, before.Height, after.Width, after.Height)
	out := Combine(before.Image, after.Image, s.opts)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, format, imaging.JPEGQuality(90)); err != nil {
		return Result{}, fmt.Errorf("encode comparison: %w", err)
	}
	if err := s.fs.WriteFile(input.OutputPath, buf.Bytes()); err != nil {
		return Result{}, fmt.Errorf("write comparison: %w", err)
	}

	b := out.Bounds()
	s.logger.Info("Comparison saved to %s (%dx%d)", input.OutputPath, b.Dx(), b.Dy())
	return Result{
		OutputPath: input.OutputPath,
		Width:      b.Dx(),
		Height:     b.Dy(),
		Bytes:      buf.Len(),
	}, nil
}

func (s *Stage) load(path string) (imagesource.RasterImage, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return imagesource.RasterImage{}, err
	}
	return imagesource.Decode(data)
}
