package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pixelbattle.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load(missing) error = %v", err)
	}
	if cfg.CanvasWidth != Default().CanvasWidth {
		t.Errorf("CanvasWidth = %d, want default %d", cfg.CanvasWidth, Default().CanvasWidth)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"canvas_width": 1600,
		"canvas_height": 400,
		"cooldown_time": 5,
		"reconnect_base": "250ms",
		"heartbeat_interval": 15
	}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if cfg.CanvasWidth != 1600 || cfg.CanvasHeight != 400 {
		t.Errorf("canvas = %dx%d, want 1600x400", cfg.CanvasWidth, cfg.CanvasHeight)
	}
	if cfg.Cooldown() != 5*time.Second {
		t.Errorf("Cooldown() = %v, want 5s", cfg.Cooldown())
	}
	if cfg.ReconnectBase.Std() != 250*time.Millisecond {
		t.Errorf("ReconnectBase = %v, want 250ms", cfg.ReconnectBase.Std())
	}
	if cfg.HeartbeatInterval.Std() != 15*time.Second {
		t.Errorf("HeartbeatInterval = %v, want 15s", cfg.HeartbeatInterval.Std())
	}
	if cfg.PixelSize != Default().PixelSize {
		t.Errorf("PixelSize = %d, want untouched default", cfg.PixelSize)
	}
}

func TestLoad_MalformedIsInvalid(t *testing.T) {
	path := writeConfig(t, `{"canvas_width": `)
	_, err := Load(path)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Load(malformed) error = %v, want ErrInvalid", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.CanvasWidth = 0 }},
		{"zero pixel size", func(c *Config) { c.PixelSize = 0 }},
		{"inverted zoom", func(c *Config) { c.MinScale, c.MaxScale = 2, 1 }},
		{"negative cooldown", func(c *Config) { c.CooldownTime = -1 }},
		{"bad default color", func(c *Config) { c.DefaultColor = "red" }},
		{"bad palette", func(c *Config) { c.Colors = []string{"#FFF", "nope"} }},
		{"unknown renderer", func(c *Config) { c.Renderer = "sdl" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestRegisterFlags(t *testing.T) {
	cfg := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	if err := fs.Parse([]string{"-width", "1600", "-renderer", "tui", "-origin", "https://pixels.example"}); err != nil {
		t.Fatal(err)
	}
	if cfg.CanvasWidth != 1600 || cfg.Renderer != "tui" || cfg.Origin != "https://pixels.example" {
		t.Errorf("flags not applied: %+v", cfg)
	}
}

func TestPalette_FallsBack(t *testing.T) {
	cfg := Default()
	if len(cfg.Palette()) != len(DefaultColors) {
		t.Errorf("Palette() len = %d, want %d", len(cfg.Palette()), len(DefaultColors))
	}
	cfg.Colors = []string{"#123456"}
	if got := cfg.Palette(); len(got) != 1 || got[0] != "#123456" {
		t.Errorf("Palette() = %v, want [#123456]", got)
	}
}
