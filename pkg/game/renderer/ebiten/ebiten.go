// Package ebiten provides the windowed renderer: the canvas in an offscreen
// image, a status header, a palette sidebar, toasts and a command console,
// with mouse, touch, wheel, keyboard and gamepad input.
package ebiten

import (
	"errors"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/leonelquinteros/gotext"

	"pixelbattle/pkg/game/app"
	"pixelbattle/pkg/game/config"
	"pixelbattle/pkg/game/renderer"
	"pixelbattle/pkg/game/state"
	"pixelbattle/pkg/game/viewport"
)

// New creates the windowed renderer. Nothing touches the display until Init.
func New(cfg *config.Config) *EbitenRenderer {
	w, h := cfg.WindowWidth, cfg.WindowHeight
	if w <= 0 || h <= 0 {
		w, h = defaultWindowWidth, defaultWindowHeight
	}
	return &EbitenRenderer{
		cfg:            cfg,
		messages:       renderer.NewMessages(time.Now),
		windowWidth:    float64(w),
		windowHeight:   float64(h),
		dpr:            1,
		canvas:         &Surface{},
		touches:        make(map[ebiten.TouchID]viewport.Point),
		keyRepeatState: make(map[string]keyRepeatInfo),
	}
}

// Init loads the fonts and configures the window.
func (e *EbitenRenderer) Init() error {
	if err := e.loadFonts(); err != nil {
		return err
	}
	if m := ebiten.Monitor(); m != nil {
		e.dpr = m.DeviceScaleFactor()
	}
	ebiten.SetWindowSize(int(e.windowWidth), int(e.windowHeight))
	ebiten.SetWindowTitle(gotext.Get("Pixel Battle"))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return nil
}

func (e *EbitenRenderer) layout() layout {
	l := layout{width: e.windowWidth, height: e.windowHeight}
	if e.app != nil {
		l.sidebarOpen = state.SidebarOpen(e.app.Store())
		l.colors = len(e.app.Palette())
	}
	return l
}

// Container reports the canvas area in logical units.
func (e *EbitenRenderer) Container() viewport.Container {
	return viewport.ContainerFunc(func() (float64, float64) {
		c := e.layout().canvas()
		return c.w, c.h
	})
}

// Notifier returns the toast queue drawn over the canvas.
func (e *EbitenRenderer) Notifier() app.Notifier {
	return e.messages
}

// Attach connects the renderer to the client and reports the initial size.
func (e *EbitenRenderer) Attach(c *app.Coordinator) {
	e.app = c
	e.syncLayout()
}

// syncLayout reports the canvas area to the client when the window, the
// scale factor or the sidebar changed it.
func (e *EbitenRenderer) syncLayout() {
	if e.app == nil {
		return
	}
	c := e.layout().canvas()
	if c.w == e.reportedWidth && c.h == e.reportedHeight && e.dpr == e.reportedDPR {
		return
	}
	e.reportedWidth, e.reportedHeight, e.reportedDPR = c.w, c.h, e.dpr
	e.app.Resize(c.w, c.h, e.dpr)
}

// Run opens the window and blocks until it is closed or the user quits.
func (e *EbitenRenderer) Run() error {
	err := ebiten.RunGame(e)
	if errors.Is(err, ebiten.Termination) {
		log.Printf("Window closed")
		return nil
	}
	return err
}
