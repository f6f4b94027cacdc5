// Package app wires the Store, session, viewport controller and render engine
// into one client and owns the placement flow, the cooldown and the user's
// color choice.
package app

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/leonelquinteros/gotext"

	"pixelbattle/pkg/engine/loop"
	"pixelbattle/pkg/engine/session"
	"pixelbattle/pkg/engine/store"
	"pixelbattle/pkg/game/config"
	"pixelbattle/pkg/game/devtools"
	"pixelbattle/pkg/game/render"
	"pixelbattle/pkg/game/state"
	"pixelbattle/pkg/game/viewport"
)

// ErrSurfaceUnavailable means the client has nowhere to draw. Startup aborts.
var ErrSurfaceUnavailable = errors.New("drawing surface unavailable")

// Deps are the collaborators of a Coordinator. Nil optional fields get
// production defaults.
type Deps struct {
	Config *config.Config
	Loop   *loop.Loop
	// Container measures the canvas area. Required.
	Container viewport.Container

	Clock     loop.Clock
	Dialer    session.Dialer
	Notifier  Notifier
	Clipboard func(text string) error

	// ScreenshotDir receives screenshots; empty means the working directory.
	ScreenshotDir string
}

// Coordinator is the running client.
type Coordinator struct {
	cfg      *config.Config
	store    *store.Store
	loop     *loop.Loop
	clock    loop.Clock
	timers   *loop.Scope
	notifier Notifier

	session    *session.Manager
	controller *viewport.Controller
	engine     *render.Engine

	clipboard     func(string) error
	palette       []string
	screenshotDir string

	cooldown    loop.Timer
	unsubscribe []func()
	lastStatus  string
}

// New validates the configuration and builds every component. Nothing is
// connected until Start.
func New(d Deps) (*Coordinator, error) {
	if d.Config == nil {
		return nil, fmt.Errorf("%w: no configuration", config.ErrInvalid)
	}
	if err := d.Config.Validate(); err != nil {
		return nil, err
	}
	endpoint, err := session.Endpoint(d.Config.Origin)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}
	if d.Container == nil {
		return nil, fmt.Errorf("%w: no canvas container", ErrSurfaceUnavailable)
	}
	if d.Loop == nil {
		d.Loop = loop.New()
	}
	if d.Clock == nil {
		d.Clock = loop.NewClock(d.Loop)
	}
	if d.Dialer == nil {
		d.Dialer = session.WebsocketDialer{}
	}
	if d.Notifier == nil {
		d.Notifier = LogNotifier{}
	}
	if d.Clipboard == nil {
		d.Clipboard = clipboard.WriteAll
	}

	cfg := d.Config
	c := &Coordinator{
		cfg:           cfg,
		store:         store.New(),
		loop:          d.Loop,
		clock:         d.Clock,
		timers:        loop.NewScope(d.Clock),
		notifier:      d.Notifier,
		clipboard:     d.Clipboard,
		palette:       cfg.Palette(),
		screenshotDir: d.ScreenshotDir,
	}
	state.Init(c.store, state.Defaults{Color: cfg.DefaultColor})

	geometry := viewport.Geometry{
		Width:     cfg.CanvasWidth,
		Height:    cfg.CanvasHeight,
		PixelSize: float64(cfg.PixelSize),
	}
	limits := viewport.Limits{MinScale: cfg.MinScale, MaxScale: cfg.MaxScale}

	c.controller = viewport.NewController(viewport.DefaultOptions(geometry, limits), c.store, d.Container, d.Clock)
	c.controller.OnContext = func(cell state.Cell, _ viewport.Point) {
		c.CopyCoordinates(cell)
	}

	c.engine = render.New(c.store, render.DefaultOptions(geometry), d.Clock.Now)

	c.session = session.New(session.Options{
		URL:               endpoint,
		ConnectTimeout:    cfg.ConnectTimeout.Std(),
		HeartbeatInterval: cfg.HeartbeatInterval.Std(),
		ReconnectBase:     cfg.ReconnectBase.Std(),
		ReconnectCap:      cfg.ReconnectCap.Std(),
		MaxAttempts:       cfg.MaxReconnects,
	}, d.Dialer, c.store, d.Loop, d.Clock, session.Handlers{
		OnServerError: func(msg string) {
			c.notifier.Notify(LevelError, msg)
		},
		OnGiveUp: func(attempts int) {
			c.notifier.Persistent(gotext.Get("Connection lost after %d attempts. Restart the client to try again.", attempts))
		},
		OnStats: func(stats map[string]any) {
			c.notifier.Notify(LevelInfo, formatStats(stats))
		},
	})

	c.lastStatus = state.Status(c.store)
	c.unsubscribe = append(c.unsubscribe, c.store.Subscribe(state.PathStatus, c.onStatus))

	return c, nil
}

// Store returns the shared state.
func (c *Coordinator) Store() *store.Store { return c.store }

// Controller returns the viewport controller backends feed input into.
func (c *Coordinator) Controller() *viewport.Controller { return c.controller }

// Engine returns the render engine.
func (c *Coordinator) Engine() *render.Engine { return c.engine }

// Session returns the connection manager.
func (c *Coordinator) Session() *session.Manager { return c.session }

// Config returns the configuration the client was built with.
func (c *Coordinator) Config() *config.Config { return c.cfg }

// Palette returns the colors offered to the user.
func (c *Coordinator) Palette() []string { return c.palette }

// Loop returns the task queue the backend must drain every frame.
func (c *Coordinator) Loop() *loop.Loop { return c.loop }

// Start centers the canvas and opens the connection.
func (c *Coordinator) Start() {
	c.controller.Center()
	c.session.Connect()
}

// Update runs work posted by timers and the network. Backends call it at the
// start of every frame.
func (c *Coordinator) Update() {
	c.loop.Drain()
}

// Draw lets the render engine paint if anything changed. It reports whether
// a paint happened.
func (c *Coordinator) Draw(surface render.Surface) (bool, error) {
	painted, err := c.engine.Frame(surface)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrSurfaceUnavailable, err)
	}
	return painted, nil
}

// Resize reports a new container size and device pixel ratio.
func (c *Coordinator) Resize(w, h, dpr float64) {
	c.engine.Resize(w, h, dpr)
	c.controller.Reclamp()
}

// ConfirmPlacement sends the selected cell in the selected color. Failed
// checks produce an advisory notification and nothing is sent.
func (c *Coordinator) ConfirmPlacement() bool {
	cell, ok := state.Selected(c.store)
	if !ok {
		c.notifier.Notify(LevelWarning, gotext.Get("Select a pixel first"))
		return false
	}
	if active, remaining := state.Cooldown(c.store); active {
		c.notifier.Notify(LevelWarning, gotext.Get("Wait %d seconds before placing another pixel", remaining))
		return false
	}
	if !state.Connected(c.store) {
		c.notifier.Notify(LevelWarning, gotext.Get("Not connected to the server"))
		return false
	}
	color := state.SelectedColor(c.store)
	if !state.ValidHex(color) {
		c.notifier.Notify(LevelWarning, gotext.Get("Choose a color first"))
		return false
	}

	if !c.session.Send(session.NewPlacePixel(cell.X, cell.Y, color), false) {
		c.notifier.Notify(LevelError, gotext.Get("Could not send the pixel"))
		return false
	}
	state.PutPixels(c.store, state.Pixel{X: cell.X, Y: cell.Y, Color: color})
	c.startCooldown(c.cfg.CooldownTime)
	log.Printf("Placed %s at (%d, %d)", color, cell.X, cell.Y)
	return true
}

// startCooldown blocks placement for secs seconds, counting down once per
// second. The final tick clears the flag in the same write as the counter.
func (c *Coordinator) startCooldown(secs int) {
	if c.cooldown != nil {
		c.cooldown.Stop()
		c.cooldown = nil
	}
	if secs <= 0 {
		return
	}
	c.store.BatchUpdate(map[string]any{
		state.PathIsCooldown:   true,
		state.PathCooldownTime: secs,
	})
	c.cooldown = c.timers.Every(time.Second, func() {
		_, remaining := state.Cooldown(c.store)
		remaining--
		if remaining > 0 {
			c.store.Set(state.PathCooldownTime, remaining)
			return
		}
		c.cooldown.Stop()
		c.cooldown = nil
		c.store.BatchUpdate(map[string]any{
			state.PathIsCooldown:   false,
			state.PathCooldownTime: 0,
		})
		c.notifier.Notify(LevelInfo, gotext.Get("You can place a pixel again"))
	})
}

// SelectColor makes hex the placement color.
func (c *Coordinator) SelectColor(hex string) bool {
	if !state.ValidHex(hex) {
		c.notifier.Notify(LevelWarning, gotext.Get("%s is not a color", hex))
		return false
	}
	c.store.Set(state.PathSelectedColor, strings.ToUpper(hex))
	return true
}

// NextColor moves the selection one palette entry forward.
func (c *Coordinator) NextColor() {
	c.stepColor(1)
}

// PrevColor moves the selection one palette entry back.
func (c *Coordinator) PrevColor() {
	c.stepColor(-1)
}

func (c *Coordinator) stepColor(dir int) {
	if len(c.palette) == 0 {
		return
	}
	current := strings.ToUpper(state.SelectedColor(c.store))
	i := -1
	for j, p := range c.palette {
		if strings.ToUpper(p) == current {
			i = j
			break
		}
	}
	switch {
	case i < 0 && dir > 0:
		i = 0
	case i < 0:
		i = len(c.palette) - 1
	default:
		i = (i + dir + len(c.palette)) % len(c.palette)
	}
	c.SelectColor(c.palette[i])
}

// CopyCoordinates puts "x,y" of cell on the clipboard.
func (c *Coordinator) CopyCoordinates(cell state.Cell) {
	text := fmt.Sprintf("%d,%d", cell.X, cell.Y)
	if err := c.clipboard(text); err != nil {
		log.Printf("Clipboard unavailable: %v", err)
		c.notifier.Notify(LevelWarning, gotext.Get("Could not copy coordinates"))
		return
	}
	c.notifier.Notify(LevelInfo, gotext.Get("Copied %s", text))
}

// CopySelected copies the selected cell's coordinates, if any.
func (c *Coordinator) CopySelected() {
	cell, ok := state.Selected(c.store)
	if !ok {
		c.notifier.Notify(LevelWarning, gotext.Get("Select a pixel first"))
		return
	}
	c.CopyCoordinates(cell)
}

// RequestStats asks the server for statistics.
func (c *Coordinator) RequestStats() {
	if !c.session.RequestStats() {
		c.notifier.Notify(LevelWarning, gotext.Get("Not connected to the server"))
	}
}

// Reconnect opens the connection again after a give-up or a disconnect.
func (c *Coordinator) Reconnect() {
	if c.session.State() == session.StateConnected {
		return
	}
	c.session.Connect()
}

// Goto scrolls to cell and selects it.
func (c *Coordinator) Goto(cell state.Cell) bool {
	return c.controller.CenterOn(cell)
}

// Screenshot saves the current view as a PNG.
func (c *Coordinator) Screenshot() (string, error) {
	path, err := devtools.SaveScreenshot(c.engine, c.screenshotDir, c.clock.Now())
	if err != nil {
		c.notifier.Notify(LevelError, gotext.Get("Screenshot failed"))
		return "", err
	}
	c.notifier.Notify(LevelSuccess, gotext.Get("Saved %s", path))
	return path, nil
}

// DumpCanvas writes a text dump of the known pixels and client state next to
// the screenshots.
func (c *Coordinator) DumpCanvas() (string, error) {
	path, err := devtools.DumpCanvasToFile(c.store, c.cfg.CanvasWidth, c.cfg.CanvasHeight, c.screenshotDir, c.clock.Now())
	if err != nil {
		c.notifier.Notify(LevelError, gotext.Get("Canvas dump failed"))
		return "", err
	}
	log.Printf("Canvas dump written to %s", path)
	return path, nil
}

// ShowTestPattern paints the palette test pattern into the local pixel map.
// Nothing is sent; the next server snapshot replaces it.
func (c *Coordinator) ShowTestPattern() int {
	pixels := devtools.PalettePattern(c.cfg.CanvasWidth, c.cfg.CanvasHeight, c.palette)
	state.PutPixels(c.store, pixels...)
	return len(pixels)
}

func (c *Coordinator) onStatus(ch store.Change) {
	status, _ := ch.Value.(string)
	prev := c.lastStatus
	c.lastStatus = status
	switch {
	case status == "connected" && prev != "connected":
		c.notifier.Notify(LevelSuccess, gotext.Get("Connected to the server"))
	case status == "disconnected" && prev == "connected":
		c.notifier.Notify(LevelWarning, gotext.Get("Disconnected from the server"))
	}
}

// Close stops every timer, disconnects and releases subscriptions.
func (c *Coordinator) Close() {
	for _, u := range c.unsubscribe {
		u()
	}
	c.unsubscribe = nil
	c.timers.Stop()
	c.cooldown = nil
	c.session.Close()
	c.controller.Close()
	c.engine.Close()
}

func formatStats(stats map[string]any) string {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", strings.ReplaceAll(k, "_", " "), stats[k]))
	}
	return gotext.Get("Server stats: %s", strings.Join(parts, ", "))
}
