package pipeline

import (
	"image"
	"image/color"

	"github.com/user/hemostyle/pkg/catalog"
	"github.com/user/hemostyle/pkg/ports"
)

// =============================================================================
// Common Types
// =============================================================================

// Dimension represents width and height.
type Dimension struct {
	Width  int
	Height int
}

// Point is a position in canvas pixels.
type Point struct {
	X float64
	Y float64
}

// =============================================================================
// Transform Stage Types
// =============================================================================

// TransformMode selects how a style is applied to the source photo.
type TransformMode string

const (
	// ModeLocal uses only the local filter recipes.
	ModeLocal TransformMode = "local"
	// ModeAPI uses only the generative service; failures propagate.
	ModeAPI TransformMode = "api"
	// ModeAuto tries the generative service and falls back to local filters once.
	ModeAuto TransformMode = "auto"
)

// ParseTransformMode parses a mode string, defaulting to ModeLocal.
func ParseTransformMode(s string) TransformMode {
	switch TransformMode(s) {
	case ModeAPI:
		return ModeAPI
	case ModeAuto:
		return ModeAuto
	default:
		return ModeLocal
	}
}

// TransformInput contains the source photo and the chosen style.
type TransformInput struct {
	Source image.Image
	// SourceData is the encoded source, forwarded to the generative service.
	SourceData []byte
	SourceMIME string
	Style      catalog.StylePreset
	Mode       TransformMode
}

// TransformResult contains the styled photo.
type TransformResult struct {
	Image image.Image
	// Backend is "generative" or "local".
	Backend string
	// Recipe is the local recipe used, RecipeNone for generative output.
	Recipe catalog.RecipeID
	// FellBack is true when the generative call failed and local filters ran instead.
	FellBack bool
}

// =============================================================================
// Filter Stage Types
// =============================================================================

// FilterInput selects a recipe either explicitly or by directive keywords.
type FilterInput struct {
	Image image.Image
	// Recipe takes precedence over Directive when set.
	Recipe    catalog.RecipeID
	Directive string
}

// FilterResult is the recoloured image and the recipe that produced it.
type FilterResult struct {
	Image  *image.NRGBA
	Recipe catalog.RecipeID
}

// =============================================================================
// Layout Stage Types
// =============================================================================

// TextOverlay is the user-editable text drawn on top of the photo.
type TextOverlay struct {
	Content    string
	ColorHex   string
	FontSizePx float64
}

// DefaultTextOverlay returns the editor defaults: white, 60px, no text.
func DefaultTextOverlay() TextOverlay {
	return TextOverlay{
		ColorHex:   "#ffffff",
		FontSizePx: 60,
	}
}

// LayoutInput contains everything needed to place the photo and the text.
type LayoutInput struct {
	ImageSize   Dimension
	AspectRatio catalog.AspectRatio
	Overlay     TextOverlay
	// Measure returns the advance width of a string at the overlay font size.
	Measure func(s string) float64
}

// LayoutResult holds the computed geometry of a render.
type LayoutResult struct {
	Canvas Dimension

	// Scale is the uniform cover-fit scale factor.
	Scale float64
	// ImageOrigin is the top-left corner of the scaled photo (may be negative).
	ImageOrigin Point
	// ImageSize is the scaled photo size (>= Canvas in both axes).
	ImageSize Point

	// MaxLineWidth is the wrap budget (80% of canvas width).
	MaxLineWidth float64
	LineHeight   float64
	Lines        []TextLine
}

// TextLine is one wrapped line of overlay text.
type TextLine struct {
	Text string
	// Width is the measured advance width.
	Width float64
	// Anchor is the horizontal centre and the baseline of the line.
	Anchor Point
}

// =============================================================================
// Compose Stage Types
// =============================================================================

// ComposeInput contains the photo, overlay and aspect ratio for one render.
type ComposeInput struct {
	Image       image.Image
	Overlay     TextOverlay
	AspectRatio catalog.AspectRatio
}

// CanvasState is the render target of a single pass.
type CanvasState struct {
	Width  int
	Height int
	Image  *image.RGBA
}

// ComposeResult is the finished canvas and the layout used to draw it.
type ComposeResult struct {
	Canvas CanvasState
	Layout LayoutResult
}

// TextEffects describes how overlay text is drawn.
type TextEffects struct {
	Fill        color.Color
	ShadowColor color.Color
	ShadowBlur  float64
	ShadowDX    float64
	ShadowDY    float64
	StrokeColor color.Color
	StrokeWidth float64
}

// DefaultTextEffects returns the shadow and stroke settings for a font size.
func DefaultTextEffects(fill color.Color, fontSize float64) TextEffects {
	return TextEffects{
		Fill:        fill,
		ShadowColor: color.Black,
		ShadowBlur:  15,
		ShadowDX:    2,
		ShadowDY:    2,
		StrokeColor: color.Black,
		StrokeWidth: fontSize / 15,
	}
}

// =============================================================================
// Export Stage Types
// =============================================================================

// ExportInput contains the canvas to serialise.
type ExportInput struct {
	Canvas CanvasState
	Format ports.ImageFormat
}

// ExportResult contains the encoded image.
type ExportResult struct {
	Data     []byte
	MIMEType string
	DataURI  string
	Filename string
	// Hash is a short content hash of Data.
	Hash string
}

// =============================================================================
// Batch Stage Types
// =============================================================================

// BatchInput renders one photo and overlay at several aspect ratios.
type BatchInput struct {
	Image        image.Image
	Overlay      TextOverlay
	AspectRatios []catalog.AspectRatio
	Format       ports.ImageFormat
}

// BatchItem is one rendered and encoded canvas.
type BatchItem struct {
	AspectRatio catalog.AspectRatio
	Compose     ComposeResult
	Export      ExportResult
}

// BatchResult holds the items in the order of BatchInput.AspectRatios.
type BatchResult struct {
	Items []BatchItem
}
