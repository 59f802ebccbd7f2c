// Package hemostyle provides a high-level API for styling photos into
// thumbnails and social posts.
package hemostyle

import (
	"image/color"
	"strings"

	"github.com/user/hemostyle/pkg/catalog"
	"github.com/user/hemostyle/pkg/orchestrator"
	"github.com/user/hemostyle/pkg/pipeline"
	"github.com/user/hemostyle/pkg/ports"
)

// Preset names a canvas preset.
type Preset string

const (
	PresetThumbnail Preset = "thumbnail"
	PresetStory     Preset = "story"
	PresetSquare    Preset = "square"
)

// Config represents the configuration for one styled render.
type Config struct {
	// Canvas
	AspectRatio catalog.AspectRatio

	// Text
	Text      string
	TextColor color.Color
	FontSize  float64 // CSS pixels at canvas scale (min: 1)

	// Style
	StyleID string // Empty keeps the photo unstyled
	Mode    pipeline.TransformMode

	// Output
	Format ports.ImageFormat
}

// ConfigBuilder provides a fluent interface for building Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a new ConfigBuilder with thumbnail preset defaults.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: thumbnailDefaults(),
	}
}

// NewPresetConfigBuilder creates a ConfigBuilder for the named preset.
// Unknown names use the thumbnail preset.
func NewPresetConfigBuilder(preset Preset) *ConfigBuilder {
	switch Preset(strings.ToLower(string(preset))) {
	case PresetStory:
		return &ConfigBuilder{config: storyDefaults()}
	case PresetSquare:
		return &ConfigBuilder{config: squareDefaults()}
	default:
		return NewConfigBuilder()
	}
}

// thumbnailDefaults returns the video thumbnail preset.
func thumbnailDefaults() Config {
	return Config{
		AspectRatio: catalog.Aspect16x9,
		TextColor:   color.White,
		FontSize:    60,
		Mode:        pipeline.ModeLocal,
		Format:      ports.FormatPNG,
	}
}

// storyDefaults returns the vertical story preset.
func storyDefaults() Config {
	return Config{
		AspectRatio: catalog.Aspect9x16,
		TextColor:   color.White,
		FontSize:    80,
		Mode:        pipeline.ModeLocal,
		Format:      ports.FormatJPEG,
	}
}

// squareDefaults returns the square feed post preset.
func squareDefaults() Config {
	return Config{
		AspectRatio: catalog.Aspect1x1,
		TextColor:   color.White,
		FontSize:    64,
		Mode:        pipeline.ModeLocal,
		Format:      ports.FormatJPEG,
	}
}

// Build returns the final Config, applying validation and constraints.
func (b *ConfigBuilder) Build() Config {
	cfg := b.config

	if !cfg.AspectRatio.Valid() {
		cfg.AspectRatio = catalog.Aspect16x9
	}

	if cfg.FontSize < 1 {
		cfg.FontSize = 1
	}

	if cfg.TextColor == nil {
		cfg.TextColor = color.White
	}

	return cfg
}

// WithAspectRatio sets the canvas aspect ratio.
// Invalid values fall back to 16:9 on Build.
func (b *ConfigBuilder) WithAspectRatio(a catalog.AspectRatio) *ConfigBuilder {
	b.config.AspectRatio = a
	return b
}

// WithText sets the overlay text.
func (b *ConfigBuilder) WithText(text string) *ConfigBuilder {
	b.config.Text = text
	return b
}

// WithSuggestedTitle sets the overlay text to the first suggested title.
func (b *ConfigBuilder) WithSuggestedTitle() *ConfigBuilder {
	if titles := catalog.SuggestTitles(); len(titles) > 0 {
		b.config.Text = titles[0]
	}
	return b
}

// WithTextColor sets the text fill color.
func (b *ConfigBuilder) WithTextColor(c color.Color) *ConfigBuilder {
	b.config.TextColor = c
	return b
}

// WithFontSize sets the font size in canvas pixels.
// Values below 1 will be forced to 1.
func (b *ConfigBuilder) WithFontSize(size float64) *ConfigBuilder {
	b.config.FontSize = size
	return b
}

// WithStyle sets the style preset ID.
func (b *ConfigBuilder) WithStyle(id string) *ConfigBuilder {
	b.config.StyleID = id
	return b
}

// WithMode sets how the style is applied.
func (b *ConfigBuilder) WithMode(mode pipeline.TransformMode) *ConfigBuilder {
	b.config.Mode = mode
	return b
}

// WithFormat sets the output image format.
func (b *ConfigBuilder) WithFormat(format ports.ImageFormat) *ConfigBuilder {
	b.config.Format = format
	return b
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig(inputPath, outputPath string) orchestrator.Config {
	return orchestrator.Config{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Format:     c.Format,

		StyleID: c.StyleID,
		Mode:    c.Mode,

		AspectRatio: c.AspectRatio,
		Overlay: pipeline.TextOverlay{
			Content:    c.Text,
			ColorHex:   colorToHex(c.TextColor),
			FontSizePx: c.FontSize,
		},
	}
}

// colorToHex converts color.Color to a #rrggbbaa string.
func colorToHex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 255 {
		return "#" + hex2(n.R) + hex2(n.G) + hex2(n.B)
	}
	return "#" + hex2(n.R) + hex2(n.G) + hex2(n.B) + hex2(n.A)
}

func hex2(v uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[v>>4], digits[v&0x0f]})
}
