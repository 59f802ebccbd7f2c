package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/hemostyle/pkg/catalog"
	"github.com/user/hemostyle/pkg/pipeline"
	"github.com/user/hemostyle/pkg/ports"
	"github.com/user/hemostyle/pkg/stages/export"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Mode != "local" {
		t.Errorf("expected mode local, got %q", cfg.Mode)
	}
	if cfg.Text.Color != "#ffffff" || cfg.Text.FontSize != 60 {
		t.Errorf("unexpected text defaults %+v", cfg.Text)
	}
	if cfg.AspectRatio != "16:9" {
		t.Errorf("expected 16:9, got %q", cfg.AspectRatio)
	}
	if cfg.JPEGQuality != 90 {
		t.Errorf("expected JPEG quality 90, got %d", cfg.JPEGQuality)
	}
	if cfg.MaxPixels() != 50_000_000 {
		t.Errorf("expected 50 MP decode limit, got %d", cfg.MaxPixels())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile_Overrides(t *testing.T) {
	path := writeFile(t, "hemostyle.yaml", `
mode: auto
aspect_ratio: "9:16"
format: jpg
text:
  color: "#ff0000"
debug: true
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Mode != "auto" {
		t.Errorf("expected mode auto, got %q", cfg.Mode)
	}
	if cfg.AspectRatio != "9:16" {
		t.Errorf("expected 9:16, got %q", cfg.AspectRatio)
	}
	if cfg.Text.Color != "#ff0000" {
		t.Errorf("expected red text, got %q", cfg.Text.Color)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Text.FontSize != 60 {
		t.Errorf("expected default font size, got %v", cfg.Text.FontSize)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr, got %q", cfg.Addr)
	}
	if !cfg.Debug {
		t.Error("expected debug to be enabled")
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := writeFile(t, "bad.yaml", "mode: [unterminated")
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAPIKey: "secret",
		EnvModel:  "models/custom",
		EnvAddr:   "  ",
		EnvMode:   "api",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Defaults()
	cfg.ApplyEnv(lookup)

	if cfg.APIKey != "secret" {
		t.Errorf("expected api key from env, got %q", cfg.APIKey)
	}
	if cfg.Model != "models/custom" {
		t.Errorf("expected model from env, got %q", cfg.Model)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("blank env value should not override addr, got %q", cfg.Addr)
	}
	if cfg.Mode != "api" {
		t.Errorf("expected mode api, got %q", cfg.Mode)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	os.Unsetenv(EnvAPIKey)
	t.Setenv(EnvAddr, ":9090")

	yamlPath := writeFile(t, "hemostyle.yaml", "addr: \":7070\"\n")
	envPath := writeFile(t, ".env", "GEMINI_API_KEY=from-dotenv\nHEMOSTYLE_ADDR=:6060\n")
	t.Cleanup(func() { os.Unsetenv(EnvAPIKey) })

	cfg, err := Load(yamlPath, envPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey != "from-dotenv" {
		t.Errorf("expected api key from .env, got %q", cfg.APIKey)
	}
	// The process environment wins over .env and the YAML file.
	if cfg.Addr != ":9090" {
		t.Errorf("expected addr from process env, got %q", cfg.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		wantIs error
	}{
		{"bad mode", func(c *Config) { c.Mode = "cloud" }, pipeline.ErrInvalidInput},
		{"bad aspect", func(c *Config) { c.AspectRatio = "3:2" }, catalog.ErrUnknownAspectRatio},
		{"bad format", func(c *Config) { c.Format = "gif" }, export.ErrUnsupportedFormat},
		{"bad color", func(c *Config) { c.Text.Color = "white" }, pipeline.ErrInvalidInput},
		{"bad font size", func(c *Config) { c.Text.FontSize = 0 }, pipeline.ErrInvalidInput},
		{"bad quality", func(c *Config) { c.JPEGQuality = 101 }, pipeline.ErrInvalidInput},
		{"bad pixel limit", func(c *Config) { c.MaxMegapixels = 0 }, pipeline.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("expected %v, got %v", tt.wantIs, err)
			}
		})
	}
}

func TestToOrchestratorConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "auto"
	cfg.AspectRatio = "1:1"
	cfg.Format = "jpeg"
	cfg.Text.Color = "#00ff00"
	cfg.Text.FontSize = 72

	oc := cfg.ToOrchestratorConfig("in.jpg", "out.jpg")

	if oc.InputPath != "in.jpg" || oc.OutputPath != "out.jpg" {
		t.Errorf("unexpected paths %q %q", oc.InputPath, oc.OutputPath)
	}
	if oc.Mode != pipeline.ModeAuto {
		t.Errorf("expected auto mode, got %s", oc.Mode)
	}
	if oc.AspectRatio != catalog.Aspect1x1 {
		t.Errorf("expected 1:1, got %s", oc.AspectRatio)
	}
	if oc.Format != ports.FormatJPEG {
		t.Errorf("expected JPEG, got %s", oc.Format)
	}
	if oc.Overlay.ColorHex != "#00ff00" || oc.Overlay.FontSizePx != 72 {
		t.Errorf("unexpected overlay %+v", oc.Overlay)
	}
}
