package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
// It allows saving intermediate processing results for debugging purposes.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveLayoutJSON saves the layout calculation result as JSON.
	SaveLayoutJSON(data []byte) error

	// SaveSource saves the decoded source photo.
	SaveSource(img image.Image) error

	// SaveStyled saves the output of the transform stage.
	SaveStyled(img image.Image) error

	// SaveComposed saves a composed canvas. Index increases per render.
	SaveComposed(index int, img image.Image) error
}
