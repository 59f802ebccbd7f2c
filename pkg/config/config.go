// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/user/hemostyle/pkg/catalog"
	"github.com/user/hemostyle/pkg/orchestrator"
	"github.com/user/hemostyle/pkg/pipeline"
	"github.com/user/hemostyle/pkg/ports"
	"github.com/user/hemostyle/pkg/stages/export"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIKey = "GEMINI_API_KEY"
	EnvModel  = "HEMOSTYLE_MODEL"
	EnvAddr   = "HEMOSTYLE_ADDR"
	EnvMode   = "HEMOSTYLE_MODE"
)

// Config represents the full configuration for hemostyle.
type Config struct {
	// Transform
	Mode       string `yaml:"mode"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	TimeoutSec int    `yaml:"timeout_sec"`

	// Input
	MaxMegapixels int `yaml:"max_megapixels"`

	// Overlay
	Text TextConfig `yaml:"text"`

	// Canvas
	AspectRatio string `yaml:"aspect_ratio"`

	// Export
	Format      string `yaml:"format"`
	JPEGQuality int    `yaml:"jpeg_quality"`

	// Server
	Addr string `yaml:"addr"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// TextConfig holds the overlay defaults.
type TextConfig struct {
	Color    string  `yaml:"color"`
	FontSize float64 `yaml:"font_size"`
	// FontPath selects a TrueType font; empty uses the bundled bold face.
	FontPath string `yaml:"font_path"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		// Transform
		Mode:       string(pipeline.ModeLocal),
		Model:      "gemini-2.5-flash-image",
		TimeoutSec: 60,

		// Input
		MaxMegapixels: 50,

		// Overlay
		Text: TextConfig{
			Color:    "#ffffff",
			FontSize: 60,
		},

		// Canvas
		AspectRatio: string(catalog.Aspect16x9),

		// Export
		Format:      "png",
		JPEGQuality: export.DefaultJPEGQuality,

		// Server
		Addr: ":8080",

		// Logging
		LogLevel: "info",

		// Debug
		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file over Defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Load reads the optional YAML file, then the .env files and the process
// environment. Missing .env files are ignored.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return cfg, err
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}
	cfg.ApplyEnv(os.LookupEnv)

	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields with non-empty environment values.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvAPIKey, &c.APIKey)
	set(EnvModel, &c.Model)
	set(EnvAddr, &c.Addr)
	set(EnvMode, &c.Mode)
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	switch pipeline.TransformMode(c.Mode) {
	case pipeline.ModeLocal, pipeline.ModeAPI, pipeline.ModeAuto:
	default:
		return fmt.Errorf("%w: mode %q", pipeline.ErrInvalidInput, c.Mode)
	}
	if _, err := catalog.ParseAspectRatio(c.AspectRatio); err != nil {
		return err
	}
	if _, err := export.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := pipeline.ParseHexColor(c.Text.Color); err != nil {
		return err
	}
	if c.Text.FontSize <= 0 {
		return fmt.Errorf("%w: font size %v", pipeline.ErrInvalidInput, c.Text.FontSize)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("%w: jpeg quality %d", pipeline.ErrInvalidInput, c.JPEGQuality)
	}
	if c.MaxMegapixels <= 0 {
		return fmt.Errorf("%w: max megapixels %d", pipeline.ErrInvalidInput, c.MaxMegapixels)
	}
	return nil
}

// MaxPixels returns the decode limit in pixels.
func (c Config) MaxPixels() int {
	return c.MaxMegapixels * 1_000_000
}

// Timeout returns the generative request timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Overlay returns the default overlay with the given text.
func (c Config) Overlay(text string) pipeline.TextOverlay {
	return pipeline.TextOverlay{
		Content:    text,
		ColorHex:   c.Text.Color,
		FontSizePx: c.Text.FontSize,
	}
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
// Invalid enum values fall back to the orchestrator defaults; call Validate first.
func (c Config) ToOrchestratorConfig(inputPath, outputPath string) orchestrator.Config {
	oc := orchestrator.DefaultConfig()
	oc.InputPath = inputPath
	oc.OutputPath = outputPath
	oc.Mode = pipeline.ParseTransformMode(c.Mode)
	oc.Overlay = c.Overlay("")

	if a, err := catalog.ParseAspectRatio(c.AspectRatio); err == nil {
		oc.AspectRatio = a
	}
	if f, err := export.ParseFormat(c.Format); err == nil {
		oc.Format = f
	} else {
		oc.Format = ports.FormatPNG
	}
	return oc
}
