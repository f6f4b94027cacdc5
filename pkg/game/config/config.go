// Package config loads the static client configuration: canvas geometry,
// zoom bounds, cooldown, palette and where the server lives.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"pixelbattle/pkg/game/state"
)

// DefaultPath is read when no -config flag is given.
const DefaultPath = "pixelbattle.json"

// ErrInvalid wraps every validation or parse failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is loaded once at startup and never changes afterwards.
type Config struct {
	CanvasWidth  int     `json:"canvas_width"`
	CanvasHeight int     `json:"canvas_height"`
	PixelSize    int     `json:"pixel_size"`
	MinScale     float64 `json:"min_scale"`
	MaxScale     float64 `json:"max_scale"`
	CooldownTime int     `json:"cooldown_time"`
	DefaultColor string  `json:"default_color"`

	// Colors is the palette offered to the user. Empty means DefaultColors.
	Colors []string `json:"colors"`

	// Origin is the page origin the websocket endpoint is derived from.
	Origin string `json:"origin"`

	Renderer     string `json:"renderer"`
	WindowWidth  int    `json:"window_width"`
	WindowHeight int    `json:"window_height"`
	Locale       string `json:"locale"`
	LocalesDir   string `json:"locales_dir"`

	ConnectTimeout    Duration `json:"connect_timeout"`
	HeartbeatInterval Duration `json:"heartbeat_interval"`
	ReconnectBase     Duration `json:"reconnect_base"`
	ReconnectCap      Duration `json:"reconnect_cap"`
	MaxReconnects     int      `json:"max_reconnects"`
}

// DefaultColors is the stock palette.
var DefaultColors = []string{
	"#FFFFFF", "#E4E4E4", "#888888", "#222222",
	"#FFA7D1", "#E50000", "#E59500", "#A06A42",
	"#E5D900", "#94E044", "#02BE01", "#00D3DD",
	"#0083C7", "#0000EA", "#CF6EE4", "#820080",
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		CanvasWidth:  2000,
		CanvasHeight: 600,
		PixelSize:    5,
		MinScale:     0.1,
		MaxScale:     10,
		CooldownTime: 60,
		DefaultColor: "#000000",
		Origin:       "http://localhost:80",
		Renderer:     "ebiten",
		WindowWidth:  1280,
		WindowHeight: 800,
		Locale:       "en_GB",
		LocalesDir:   "locales",

		ConnectTimeout:    Duration(10 * time.Second),
		HeartbeatInterval: Duration(30 * time.Second),
		ReconnectBase:     Duration(time.Second),
		ReconnectCap:      Duration(30 * time.Second),
		MaxReconnects:     10,
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("Config %s does not exist, using default settings", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	return cfg, nil
}

// Palette returns the configured colors, falling back to DefaultColors.
func (c *Config) Palette() []string {
	if len(c.Colors) == 0 {
		return DefaultColors
	}
	return c.Colors
}

// Validate checks every option that the client relies on.
func (c *Config) Validate() error {
	var errs []error
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		errs = append(errs, fmt.Errorf("canvas size %dx%d must be positive", c.CanvasWidth, c.CanvasHeight))
	}
	if c.PixelSize <= 0 {
		errs = append(errs, fmt.Errorf("pixel_size %d must be positive", c.PixelSize))
	}
	if c.MinScale <= 0 || c.MaxScale < c.MinScale {
		errs = append(errs, fmt.Errorf("zoom bounds [%v, %v] must satisfy 0 < min <= max", c.MinScale, c.MaxScale))
	}
	if c.CooldownTime < 0 {
		errs = append(errs, fmt.Errorf("cooldown_time %d must not be negative", c.CooldownTime))
	}
	if !state.ValidHex(c.DefaultColor) {
		errs = append(errs, fmt.Errorf("default_color %q is not #RRGGBB", c.DefaultColor))
	}
	for _, col := range c.Colors {
		if !state.ValidHex(col) {
			errs = append(errs, fmt.Errorf("palette color %q is not #RRGGBB", col))
		}
	}
	if c.Renderer != "ebiten" && c.Renderer != "tui" {
		errs = append(errs, fmt.Errorf("renderer %q must be ebiten or tui", c.Renderer))
	}
	if c.MaxReconnects < 0 {
		errs = append(errs, fmt.Errorf("max_reconnects %d must not be negative", c.MaxReconnects))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Cooldown returns the configured cooldown as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownTime) * time.Second
}

// RegisterFlags binds command-line overrides onto c. Call before flag.Parse.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Origin, "origin", c.Origin, "page origin of the pixel server (http:// or https://)")
	fs.StringVar(&c.Renderer, "renderer", c.Renderer, "presentation backend: ebiten or tui")
	fs.IntVar(&c.CanvasWidth, "width", c.CanvasWidth, "canvas grid width in cells")
	fs.IntVar(&c.CanvasHeight, "height", c.CanvasHeight, "canvas grid height in cells")
	fs.IntVar(&c.PixelSize, "pixel-size", c.PixelSize, "screen pixels per cell at scale 1")
	fs.IntVar(&c.CooldownTime, "cooldown", c.CooldownTime, "seconds between placements")
	fs.StringVar(&c.DefaultColor, "color", c.DefaultColor, "initial color (#RRGGBB)")
	fs.StringVar(&c.Locale, "locale", c.Locale, "UI language")
}
