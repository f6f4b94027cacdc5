package ebiten

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"pixelbattle/pkg/engine/input"
	"pixelbattle/pkg/game/app"
	"pixelbattle/pkg/game/config"
	"pixelbattle/pkg/game/renderer"
	"pixelbattle/pkg/game/viewport"
)

// keyRepeatInfo tracks the repeat state for a key or button
type keyRepeatInfo struct {
	firstPressed int64 // Timestamp when first pressed (milliseconds)
	lastRepeat   int64 // Timestamp when last repeat event was sent (milliseconds)
}

// EbitenRenderer is the windowed backend. Update, Draw and LayoutF all run
// on Ebiten's game goroutine, so none of its state is locked.
type EbitenRenderer struct {
	cfg      *config.Config
	app      *app.Coordinator
	messages *renderer.Messages

	// Window size in logical units and the device scale factor
	windowWidth  float64
	windowHeight float64
	dpr          float64

	// Last canvas area reported to the client
	reportedWidth  float64
	reportedHeight float64
	reportedDPR    float64

	// Offscreen canvas the engine paints into, blitted under the HUD
	canvas *Surface

	// Font sources for text rendering
	monoFontSource     *text.GoTextFaceSource
	sansFontSource     *text.GoTextFaceSource
	sansBoldFontSource *text.GoTextFaceSource

	// Cached font faces (recreated when the scale factor changes)
	cachedFaceScale float64
	cachedSansFace  *text.GoTextFace
	cachedBoldFace  *text.GoTextFace
	cachedMonoFace  *text.GoTextFace

	// Flag to track if we've logged window opening
	windowOpenedLogged bool

	// Fatal error from Draw, returned by the next Update
	drawErr error

	// Mouse state
	pressedButton viewport.Button
	mouseDown     bool
	lastCursor    viewport.Point

	// Touch positions by id, for move detection
	touches map[ebiten.TouchID]viewport.Point

	// Key repeat state tracking
	keyRepeatState map[string]keyRepeatInfo

	// Console state
	consoleActive        bool
	consoleLine          input.LineEditor
	consoleOutput        []string
	consoleAnimProgress  float64 // 0.0 (closed) to 1.0 (open)
	consoleAnimating     bool
	consoleAnimStartTime int64

	// Set by Dispatch when the user quits
	quit bool
}
