package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gookit/color"
	"github.com/leonelquinteros/gotext"

	"pixelbattle/pkg/game/app"
	"pixelbattle/pkg/game/config"
	"pixelbattle/pkg/game/renderer"
	"pixelbattle/pkg/game/renderer/ebiten"
	"pixelbattle/pkg/game/renderer/tui"
)

func initGettext(cfg *config.Config) {
	gotext.Configure(cfg.LocalesDir, cfg.Locale, "default")
}

// options are the flags that are not part of the configuration file.
type options struct {
	configPath    string
	screenshotDir string
}

// parseFlags reads the command line. Flags given explicitly override the
// configuration file, which is only known once the flags are parsed.
func parseFlags(args []string) (*config.Config, options, error) {
	var opts options
	fs := flag.NewFlagSet("pixelbattle", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", config.DefaultPath, "path of the JSON configuration file")
	fs.StringVar(&opts.screenshotDir, "screenshots", ".", "directory for screenshots and canvas dumps")
	flagValues := config.Default()
	flagValues.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, opts, err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, opts, err
	}

	// Replay the explicit flags onto the loaded configuration
	overrides := flag.NewFlagSet("overrides", flag.ContinueOnError)
	cfg.RegisterFlags(overrides)
	var setErr error
	fs.Visit(func(f *flag.Flag) {
		if overrides.Lookup(f.Name) == nil || setErr != nil {
			return
		}
		setErr = overrides.Set(f.Name, f.Value.String())
	})
	if setErr != nil {
		return nil, opts, setErr
	}

	if err := cfg.Validate(); err != nil {
		return nil, opts, err
	}
	return cfg, opts, nil
}

// newBackend picks the presentation backend. The window is the default.
func newBackend(cfg *config.Config) (renderer.Backend, error) {
	switch cfg.Renderer {
	case "ebiten":
		return ebiten.New(cfg), nil
	case "tui":
		return tui.New(), nil
	default:
		return nil, fmt.Errorf("%w: unknown renderer %q", config.ErrInvalid, cfg.Renderer)
	}
}

func run(args []string) error {
	cfg, opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	initGettext(cfg)

	// Log lines would tear the terminal canvas
	if cfg.Renderer == "tui" {
		f, err := os.OpenFile(filepath.Join(opts.screenshotDir, "pixelbattle.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		log.SetOutput(f)
	}

	backend, err := newBackend(cfg)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("%w: %w", app.ErrSurfaceUnavailable, err)
	}

	client, err := app.New(app.Deps{
		Config:        cfg,
		Container:     backend.Container(),
		Notifier:      backend.Notifier(),
		ScreenshotDir: opts.screenshotDir,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	backend.Attach(client)
	client.Start()
	log.Printf("Client started (%s renderer, %dx%d canvas)", cfg.Renderer, cfg.CanvasWidth, cfg.CanvasHeight)

	return backend.Run()
}

func main() {
	err := run(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, color.Error.Sprint(" error "), err)
		os.Exit(1)
	}
}
