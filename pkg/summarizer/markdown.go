package summarizer

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate labels.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		if fn != nil {
			f.translate = fn
		}
	}
}

// WithVersion adds the tool version to the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a formatter with English labels by default.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Render Summary"))

	fmt.Fprintf(&b, "## %s\n\n", t("Source"))
	f.table(&b, [][2]string{
		{t("File"), orDash(s.Source.Path)},
		{t("Size"), fmt.Sprintf("%dx%d", s.Source.Width, s.Source.Height)},
		{t("Format"), orDash(s.Source.Format)},
		{t("File Size"), formatBytes(s.Source.Bytes)},
	})

	fmt.Fprintf(&b, "## %s\n\n", t("Style"))
	if s.Style.ID == "" {
		fmt.Fprintf(&b, "%s\n\n", t("Original photo"))
	} else {
		backend := t(s.Style.Backend)
		if s.Style.FellBack {
			backend = fmt.Sprintf("%s (%s)", backend, t("Fallback"))
		}
		f.table(&b, [][2]string{
			{t("Preset"), fmt.Sprintf("%s (`%s`)", s.Style.Name, s.Style.ID)},
			{t("Category"), orDash(s.Style.Category)},
			{t("Backend"), backend},
			{t("Recipe"), orDash(s.Style.Recipe)},
			{t("Duration"), fmt.Sprintf("%d ms", s.Timing.TransformMs)},
		})
	}

	fmt.Fprintf(&b, "## %s\n\n", t("Canvas"))
	text := t("No text")
	if len(s.Canvas.Lines) > 0 {
		text = strings.Join(s.Canvas.Lines, " / ")
	}
	f.table(&b, [][2]string{
		{t("Aspect Ratio"), orDash(s.Canvas.AspectRatio)},
		{t("Canvas Size"), fmt.Sprintf("%dx%d", s.Canvas.Width, s.Canvas.Height)},
		{t("Scale"), fmt.Sprintf("%.3f", s.Canvas.Scale)},
		{t("Text"), text},
		{t("Duration"), fmt.Sprintf("%d ms", s.Timing.RenderMs)},
	})

	fmt.Fprintf(&b, "## %s\n\n", t("Output"))
	f.table(&b, [][2]string{
		{t("File"), orDash(s.Output.Path)},
		{t("Format"), orDash(s.Output.Format)},
		{t("File Size"), formatBytes(s.Output.Bytes)},
		{t("Hash"), "`" + s.Output.Hash + "`"},
	})

	footer := fmt.Sprintf("%s %s", t("Generated at"), s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if f.version != "" {
		footer += fmt.Sprintf(" · hemostyle %s", f.version)
	}
	fmt.Fprintf(&b, "---\n\n%s\n", footer)

	return b.String()
}

func (f *MarkdownFormatter) table(b *strings.Builder, rows [][2]string) {
	fmt.Fprintf(b, "| %s | %s |\n", f.translate("Item"), f.translate("Value"))
	b.WriteString("|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r[0], escapeCell(r[1]))
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatBytes formats a byte count with binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}

var _ Formatter = (*MarkdownFormatter)(nil)
