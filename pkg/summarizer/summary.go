// Package summarizer builds human readable reports of a render.
package summarizer

import "time"

// Summary contains everything known about one render.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Source photo
	Source SourceInfo

	// Style step
	Style StyleInfo

	// Canvas and overlay
	Canvas CanvasInfo

	// Encoded output
	Output OutputInfo

	// Timing results
	Timing TimingInfo
}

// SourceInfo describes the uploaded photo.
type SourceInfo struct {
	Path   string
	Width  int
	Height int
	Format string
	Bytes  int64
}

// StyleInfo describes how the photo was restyled. An empty ID means the
// photo was used as uploaded.
type StyleInfo struct {
	ID       string
	Name     string
	Category string
	Backend  string
	Recipe   string
	FellBack bool
}

// CanvasInfo describes the composed canvas.
type CanvasInfo struct {
	AspectRatio string
	Width       int
	Height      int
	Scale       float64
	Lines       []string
}

// OutputInfo describes the exported file.
type OutputInfo struct {
	Path   string
	Format string
	Bytes  int64
	Hash   string
}

// TimingInfo contains timing measurements.
type TimingInfo struct {
	TransformMs int64
	RenderMs    int64
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSource sets source photo information.
func (b *Builder) WithSource(source SourceInfo) *Builder {
	b.summary.Source = source
	return b
}

// WithStyle sets style information.
func (b *Builder) WithStyle(style StyleInfo) *Builder {
	b.summary.Style = style
	return b
}

// WithCanvas sets canvas information.
func (b *Builder) WithCanvas(canvas CanvasInfo) *Builder {
	b.summary.Canvas = canvas
	return b
}

// WithOutput sets output file information.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// WithTiming sets timing information.
func (b *Builder) WithTiming(transformMs, renderMs int64) *Builder {
	b.summary.Timing = TimingInfo{
		TransformMs: transformMs,
		RenderMs:    renderMs,
	}
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
