// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/hemostyle/pkg/ports"
)

// Sink saves debug output to files under a base directory:
//
//	layout.json
//	source.png
//	styled.png
//	renders/render-0000.png
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveLayoutJSON saves the most recent layout as JSON.
func (s *Sink) SaveLayoutJSON(data []byte) error {
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return err
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, "layout.json"), data)
}

// SaveSource saves the decoded upload.
func (s *Sink) SaveSource(img image.Image) error {
	return s.savePNG("source.png", img)
}

// SaveStyled saves the restyled photo.
func (s *Sink) SaveStyled(img image.Image) error {
	return s.savePNG("styled.png", img)
}

// SaveComposed saves a composed canvas.
func (s *Sink) SaveComposed(index int, img image.Image) error {
	return s.savePNG(filepath.Join("renders", fmt.Sprintf("render-%04d.png", index)), img)
}

func (s *Sink) savePNG(name string, img image.Image) error {
	path := filepath.Join(s.baseDir, name)
	if err := s.fs.MkdirAll(filepath.Dir(path)); err != nil {
		return err
	}
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.fs.WriteFile(path, data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
