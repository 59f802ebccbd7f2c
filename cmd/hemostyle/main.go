// Package main provides the CLI entry point for hemostyle.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/hemostyle/pkg/adapters/filesink"
	"github.com/user/hemostyle/pkg/adapters/geminitransformer"
	"github.com/user/hemostyle/pkg/adapters/ggrenderer"
	"github.com/user/hemostyle/pkg/adapters/logger"
	"github.com/user/hemostyle/pkg/adapters/nullsink"
	"github.com/user/hemostyle/pkg/adapters/osfilesystem"
	"github.com/user/hemostyle/pkg/catalog"
	"github.com/user/hemostyle/pkg/config"
	"github.com/user/hemostyle/pkg/hemostyle"
	"github.com/user/hemostyle/pkg/juxtapose"
	"github.com/user/hemostyle/pkg/orchestrator"
	"github.com/user/hemostyle/pkg/pipeline"
	"github.com/user/hemostyle/pkg/ports"
	"github.com/user/hemostyle/pkg/server"
	"github.com/user/hemostyle/pkg/session"
	"github.com/user/hemostyle/pkg/stages/compose"
	"github.com/user/hemostyle/pkg/stages/export"
	"github.com/user/hemostyle/pkg/stages/transform"
	"github.com/user/hemostyle/pkg/summarizer"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Render  RenderCmd  `cmd:"" help:"Style a photo and render it with a text overlay."`
	Style   StyleCmd   `cmd:"" help:"Restyle a photo without adding text."`
	Compare CompareCmd `cmd:"" help:"Place a photo and its styled version side by side."`
	Styles  StylesCmd  `cmd:"" help:"List styles, aspect ratios and title suggestions."`
	Serve   ServeCmd   `cmd:"" help:"Serve the editor HTTP API."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// CommonFlags are shared by the commands that run the pipeline.
type CommonFlags struct {
	// Configuration
	Config string `short:"C" type:"path" help:"YAML configuration file."`

	// Style options
	Mode string `short:"m" help:"How styles are applied (local, api or auto)."`

	// Debug options
	Debug    bool   `short:"d" help:"Enable debug output."`
	DebugDir string `help:"Directory for debug output (default: ./debug)."`

	// Logging options
	LogLevel string `short:"l" help:"Log level (debug, info, warn, error)."`
	Quiet    bool   `short:"Q" help:"Suppress all log output."`
}

// RenderCmd defines the render subcommand.
type RenderCmd struct {
	// Required arguments
	Input  string `arg:"" type:"existingfile" help:"Photo to render."`
	Output string `short:"o" help:"Output image path (default: hemostyle-edit.png or .jpg)."`

	// Preset
	Preset string `short:"p" default:"thumbnail" enum:"thumbnail,story,square" help:"Preset configuration (thumbnail, story or square)."`

	// Style options
	StyleID string `name:"style" short:"s" help:"Style preset ID (see 'hemostyle styles')."`
	Styled  string `help:"Also write the styled photo before text is added."`

	// Text options
	Text     *string  `short:"t" help:"Overlay text."`
	Suggest  bool     `help:"Use a suggested title when no text is given."`
	Color    *string  `help:"Text color (hex, e.g., #ffffff)."`
	FontSize *float64 `help:"Font size in canvas pixels."`
	Font     string   `type:"existingfile" help:"TrueType font for overlay text."`

	// Canvas and output
	Aspect     *string `short:"a" help:"Aspect ratio (16:9, 1:1 or 9:16)."`
	AllAspects bool    `help:"Render every offered aspect ratio, appending the ratio to each output name."`
	Format     *string `short:"f" help:"Output format (png or jpeg)."`

	// Summary
	Summary string `help:"Write a Markdown summary of the render to this path."`

	CommonFlags `embed:""`
}

// StyleCmd defines the style subcommand.
type StyleCmd struct {
	Input   string `arg:"" type:"existingfile" help:"Photo to restyle."`
	Output  string `short:"o" required:"" help:"Output image path (.png or .jpg)."`
	StyleID string `name:"style" short:"s" required:"" help:"Style preset ID (see 'hemostyle styles')."`

	CommonFlags `embed:""`
}

// CompareCmd defines the compare subcommand.
type CompareCmd struct {
	Before string `arg:"" type:"existingfile" help:"Original photo."`
	After  string `arg:"" type:"existingfile" help:"Styled photo or rendered canvas."`
	Output string `short:"o" required:"" help:"Output image path (.png or .jpg)."`
	Gap    int    `default:"10" help:"Gap between photos in pixels."`
	Height int    `help:"Output height in pixels (default: height of the original)."`
}

// StylesCmd lists the catalog.
type StylesCmd struct{}

// ServeCmd defines the serve subcommand.
type ServeCmd struct {
	Addr string `help:"Listen address (default: :8080 or HEMOSTYLE_ADDR)."`
	Font string `type:"existingfile" help:"TrueType font for overlay text."`

	CommonFlags `embed:""`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("hemostyle"),
		kong.Description(l10n.T("Restyle portraits and turn them into thumbnails and social posts.")),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// load reads the configuration and applies the shared flag overrides.
func (f *CommonFlags) load() (config.Config, error) {
	cfg, err := config.Load(f.Config)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if f.Mode != "" {
		cfg.Mode = f.Mode
	}
	if f.Debug {
		cfg.Debug = true
	}
	if f.DebugDir != "" {
		cfg.DebugDir = f.DebugDir
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	return cfg, cfg.Validate()
}

func (f *CommonFlags) newLogger(cfg config.Config) ports.Logger {
	if f.Quiet {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn(l10n.T("Interrupted, shutting down..."))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// newOrchestrator wires the adapters and stages.
func newOrchestrator(cfg config.Config, fontPath string, log ports.Logger) (*orchestrator.Orchestrator, error) {
	fs := osfilesystem.New()
	renderer := ggrenderer.New()

	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return nil, fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs, renderer)
	} else {
		sink = nullsink.New()
	}

	if fontPath == "" {
		fontPath = cfg.Text.FontPath
	}

	transformer := geminitransformer.New(geminitransformer.Options{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: cfg.Timeout(),
	})

	transformStage := transform.NewStage(transformer, log)
	composeStage := compose.NewStage(renderer, sink, log, compose.Options{FontPath: fontPath})
	exportStage := export.NewStage(renderer, log, cfg.JPEGQuality)

	orch := orchestrator.New(transformStage, composeStage, exportStage, fs, sink, log)
	orch.SetMaxPixels(cfg.MaxPixels())
	return orch, nil
}

// Run executes the render command.
func (cmd *RenderCmd) Run() error {
	cfg, err := cmd.load()
	if err != nil {
		return err
	}
	log := cmd.newLogger(cfg)

	ctx, cancel := signalContext(log)
	defer cancel()

	built, err := cmd.buildConfig(cfg)
	if err != nil {
		return err
	}

	orch, err := newOrchestrator(cfg, cmd.Font, log)
	if err != nil {
		return err
	}

	orchConfig := built.ToOrchestratorConfig(cmd.Input, cmd.Output)
	orchConfig.StyledPath = cmd.Styled

	log.Info(l10n.F("Rendering %s (%s preset)...", cmd.Input, cmd.Preset))

	var results []orchestrator.RunResult
	if cmd.AllAspects {
		results, err = orch.RunAll(ctx, orchConfig, offeredAspects())
	} else {
		var result orchestrator.RunResult
		result, err = orch.Run(ctx, orchConfig)
		results = append(results, result)
	}
	if errors.Is(err, ggrenderer.ErrMissingGlyphs) {
		log.Error(l10n.T("The font cannot draw this text; choose one that covers it with --font"))
	}
	if err != nil {
		return err
	}

	if cmd.Summary != "" {
		for _, result := range results {
			path := cmd.Summary
			if cmd.AllAspects {
				ext := filepath.Ext(path)
				path = strings.TrimSuffix(path, ext) + "-" + strings.ReplaceAll(result.AspectRatio.String(), ":", "x") + ext
			}
			if err := writeSummary(path, result); err != nil {
				log.Warn(l10n.F("Failed to write summary: %s", err))
			} else {
				log.Info(l10n.F("Summary saved to %s", path))
			}
		}
	}
	return nil
}

// offeredAspects returns the aspect ratios shown to users.
func offeredAspects() []catalog.AspectRatio {
	var ratios []catalog.AspectRatio
	for _, p := range catalog.AspectPresets() {
		ratios = append(ratios, p.Value)
	}
	return ratios
}

// buildConfig creates a hemostyle.Config from the preset, the config file and CLI overrides.
func (cmd *RenderCmd) buildConfig(cfg config.Config) (hemostyle.Config, error) {
	builder := hemostyle.NewPresetConfigBuilder(hemostyle.Preset(cmd.Preset)).
		WithMode(pipeline.ParseTransformMode(cfg.Mode)).
		WithStyle(strings.TrimSpace(cmd.StyleID))

	if cmd.Text != nil {
		builder.WithText(*cmd.Text)
	} else if cmd.Suggest {
		builder.WithSuggestedTitle()
	}
	if cmd.Color != nil {
		c, err := pipeline.ParseHexColor(*cmd.Color)
		if err != nil {
			return hemostyle.Config{}, err
		}
		builder.WithTextColor(c)
	}
	if cmd.FontSize != nil {
		if *cmd.FontSize <= 0 {
			return hemostyle.Config{}, fmt.Errorf("%w: font size %v", pipeline.ErrInvalidInput, *cmd.FontSize)
		}
		builder.WithFontSize(*cmd.FontSize)
	}
	if cmd.Aspect != nil {
		a, err := catalog.ParseAspectRatio(*cmd.Aspect)
		if err != nil {
			return hemostyle.Config{}, err
		}
		builder.WithAspectRatio(a)
	}
	if cmd.Format != nil {
		f, err := export.ParseFormat(*cmd.Format)
		if err != nil {
			return hemostyle.Config{}, err
		}
		builder.WithFormat(f)
	}

	return builder.Build(), nil
}

// writeSummary writes a Markdown summary of a render.
func writeSummary(path string, result orchestrator.RunResult) error {
	summary := summarizer.NewBuilder().
		WithSource(summarizer.SourceInfo{
			Path:   result.InputPath,
			Width:  result.SourceWidth,
			Height: result.SourceHeight,
			Format: result.SourceFormat,
			Bytes:  result.SourceBytes,
		}).
		WithStyle(summarizer.StyleInfo{
			ID:       result.Style.ID,
			Name:     result.Style.DisplayName,
			Category: string(result.Style.Category),
			Backend:  result.Backend,
			Recipe:   string(result.Recipe),
			FellBack: result.FellBack,
		}).
		WithCanvas(summarizer.CanvasInfo{
			AspectRatio: result.AspectRatio.String(),
			Width:       result.CanvasWidth,
			Height:      result.CanvasHeight,
			Scale:       result.Scale,
			Lines:       result.Lines,
		}).
		WithOutput(summarizer.OutputInfo{
			Path:   result.OutputPath,
			Format: result.Format.String(),
			Bytes:  result.OutputBytes,
			Hash:   result.Hash,
		}).
		WithTiming(result.TransformMs, result.RenderMs).
		Build()

	formatter := summarizer.NewMarkdownFormatter(
		summarizer.WithTranslator(func(s string) string { return l10n.T(s) }),
		summarizer.WithVersion(version),
	)
	return summarizer.NewWriter(formatter, osfilesystem.New()).Write(path, summary)
}

// Run executes the style command.
func (cmd *StyleCmd) Run() error {
	cfg, err := cmd.load()
	if err != nil {
		return err
	}
	log := cmd.newLogger(cfg)

	ctx, cancel := signalContext(log)
	defer cancel()

	orch, err := newOrchestrator(cfg, "", log)
	if err != nil {
		return err
	}

	orchConfig := cfg.ToOrchestratorConfig(cmd.Input, cmd.Output)
	orchConfig.StyleID = strings.TrimSpace(cmd.StyleID)

	_, err = orch.Restyle(ctx, orchConfig)
	return err
}

// Run executes the compare command.
func (cmd *CompareCmd) Run() error {
	log := logger.NewConsole(ports.LevelInfo)

	opts := juxtapose.DefaultOptions()
	opts.Gap = cmd.Gap
	opts.Height = cmd.Height

	log.Info(l10n.F("Creating comparison: %s + %s → %s", cmd.Before, cmd.After, cmd.Output))

	stage := juxtapose.New(osfilesystem.New(), log, opts)
	_, err := stage.Execute(context.Background(), juxtapose.Input{
		BeforePath: cmd.Before,
		AfterPath:  cmd.After,
		OutputPath: cmd.Output,
	})
	return err
}

// Run executes the styles command.
func (cmd *StylesCmd) Run() error {
	fmt.Println(l10n.T("Styles"))
	for _, category := range catalog.Categories() {
		fmt.Printf("  %s\n", category)
		for _, s := range catalog.Styles() {
			if s.Category == category {
				fmt.Printf("    %-16s %s\n", s.ID, s.DisplayName)
			}
		}
	}

	fmt.Println()
	fmt.Println(l10n.T("Aspect ratios"))
	for _, a := range catalog.AspectPresets() {
		w, h := a.Value.Size()
		fmt.Printf("  %-22s %dx%d\n", a.Label, w, h)
	}

	fmt.Println()
	fmt.Println(l10n.T("Title suggestions"))
	for _, t := range catalog.SuggestTitles() {
		fmt.Printf("  %s\n", t)
	}
	return nil
}

// Run executes the serve command.
func (cmd *ServeCmd) Run() error {
	cfg, err := cmd.load()
	if err != nil {
		return err
	}
	if cmd.Addr != "" {
		cfg.Addr = cmd.Addr
	}
	log := cmd.newLogger(cfg)

	ctx, cancel := signalContext(log)
	defer cancel()

	orch, err := newOrchestrator(cfg, cmd.Font, log)
	if err != nil {
		return err
	}

	opts := server.DefaultOptions()
	opts.Addr = cfg.Addr
	opts.Mode = pipeline.ParseTransformMode(cfg.Mode)
	opts.Overlay = cfg.Overlay("")
	if a, err := catalog.ParseAspectRatio(cfg.AspectRatio); err == nil {
		opts.AspectRatio = a
	}
	if f, err := export.ParseFormat(cfg.Format); err == nil {
		opts.Format = f
	}

	srv := server.New(orch, session.NewStore(), log, opts)
	return srv.ListenAndServe(ctx)
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("hemostyle version %s", version))
	return nil
}
