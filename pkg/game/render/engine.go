// Package render paints the Store's canvas state onto a Surface, at most once
// per frame and only when something changed.
package render

import (
	"errors"
	"image/color"
	"math"
	"time"

	"pixelbattle/pkg/engine/store"
	"pixelbattle/pkg/game/state"
	"pixelbattle/pkg/game/viewport"
)

// ErrNoSurface is returned when there is nothing to paint on. It is an
// initialization failure, never retried.
var ErrNoSurface = errors.New("render: drawing surface unavailable")

// Surface is a backing bitmap in device pixels.
type Surface interface {
	Size() (w, h int)
	Resize(w, h int)
	FillRect(x, y, w, h float64, c color.RGBA)
	StrokeRect(x, y, w, h, width float64, c color.RGBA)
}

// Options are the fixed look of the canvas.
type Options struct {
	Geometry viewport.Geometry

	// Background fills the area outside the canvas.
	Background color.RGBA
	// CanvasBackground fills unplaced cells.
	CanvasBackground color.RGBA
	Highlight        color.RGBA
	Border           color.RGBA

	// PulsePeriod is one full cycle of the selection highlight.
	PulsePeriod time.Duration
	// PulseInterval throttles repaints that only animate the selection. Zero
	// disables the animation.
	PulseInterval time.Duration
}

// DefaultOptions returns the standard palette for g.
func DefaultOptions(g viewport.Geometry) Options {
	return Options{
		Geometry:         g,
		Background:       color.RGBA{0x2b, 0x2b, 0x2b, 0xff},
		CanvasBackground: color.RGBA{0xff, 0xff, 0xff, 0xff},
		Highlight:        color.RGBA{0xff, 0xd7, 0x00, 0xff},
		Border:           color.RGBA{0x00, 0x00, 0x00, 0xff},
		PulsePeriod:      2 * time.Second,
		PulseInterval:    66 * time.Millisecond,
	}
}

// Engine coalesces Store changes into paints. All methods run on the loop
// goroutine.
type Engine struct {
	opts   Options
	store  *store.Store
	now    func() time.Time
	colors *colorCache

	unsubscribe func()
	needsRedraw bool
	rendering   bool

	width, height float64
	dpr           float64

	paints    int
	lastPaint time.Time
	fpsSince  time.Time
	fpsTicks  int
}

// New returns an engine subscribed to the canvas sub-tree of s. now supplies
// wall-clock time for the highlight pulse and metrics.
func New(s *store.Store, opts Options, now func() time.Time) *Engine {
	e := &Engine{
		opts:        opts,
		store:       s,
		now:         now,
		colors:      newColorCache(),
		needsRedraw: true,
		dpr:         1,
	}
	e.unsubscribe = s.Subscribe(state.PathCanvas, func(store.Change) {
		e.needsRedraw = true
	})
	return e
}

// Close stops listening to the Store.
func (e *Engine) Close() {
	e.unsubscribe()
}

// Resize records the container's measured size in logical units and its
// device pixel ratio, and requests a repaint.
func (e *Engine) Resize(w, h, dpr float64) {
	if dpr <= 0 {
		dpr = 1
	}
	if w == e.width && h == e.height && dpr == e.dpr {
		return
	}
	e.width, e.height, e.dpr = w, h, dpr
	e.needsRedraw = true
}

// Size returns the last measured container size.
func (e *Engine) Size() (w, h float64) {
	return e.width, e.height
}

// BackingSize returns the bitmap size in device pixels for the last measured
// container.
func (e *Engine) BackingSize() (w, h int) {
	return int(math.Ceil(e.width * e.dpr)), int(math.Ceil(e.height * e.dpr))
}

// Dirty reports whether the next Frame will paint.
func (e *Engine) Dirty() bool {
	return e.needsRedraw
}

// Paints returns how many paints have happened.
func (e *Engine) Paints() int {
	return e.paints
}

// Frame is called once per frame tick. It paints when a redraw is pending
// and none is in progress, and reports whether it painted.
func (e *Engine) Frame(surface Surface) (bool, error) {
	if surface == nil {
		return false, ErrNoSurface
	}
	now := e.now()
	e.tickFPS(now)

	if e.opts.PulseInterval > 0 && now.Sub(e.lastPaint) >= e.opts.PulseInterval {
		if _, ok := state.Selected(e.store); ok {
			e.needsRedraw = true
		}
	}

	if !e.needsRedraw || e.rendering {
		return false, nil
	}
	e.rendering = true
	e.needsRedraw = false
	e.paint(surface, now)
	e.rendering = false
	return true, nil
}

func (e *Engine) tickFPS(now time.Time) {
	if e.fpsSince.IsZero() {
		e.fpsSince = now
	}
	e.fpsTicks++
	if elapsed := now.Sub(e.fpsSince); elapsed >= time.Second {
		e.store.Set(state.PathFPS, float64(e.fpsTicks)/elapsed.Seconds())
		e.fpsSince = now
		e.fpsTicks = 0
	}
}

func (e *Engine) paint(surface Surface, now time.Time) {
	start := time.Now()

	// Backing bitmap follows the container; a resize repaints once more
	bw, bh := e.BackingSize()
	if w, h := surface.Size(); w != bw || h != bh {
		surface.Resize(bw, bh)
		e.needsRedraw = true
	}

	rendered, culled := e.draw(surface, now)

	e.paints++
	e.lastPaint = now
	e.store.BatchUpdate(map[string]any{
		state.PathRenderTime:     time.Since(start),
		state.PathRenderedPixels: rendered,
		state.PathCulledPixels:   culled,
		state.PathFrames:         e.paints,
	})
}

// Snapshot draws the current state onto surface at the surface's own size,
// outside the frame schedule. Metrics and the dirty flag are left alone.
func (e *Engine) Snapshot(surface Surface) error {
	if surface == nil {
		return ErrNoSurface
	}
	e.draw(surface, e.now())
	return nil
}

// draw fills surface from the Store and returns how many pixels were drawn
// and culled.
func (e *Engine) draw(surface Surface, now time.Time) (rendered, culled int) {
	g := e.opts.Geometry
	bw, bh := surface.Size()
	d := e.dpr
	vw, vh := float64(bw)/d, float64(bh)/d

	x, y := state.Offset(e.store)
	view := viewport.View{Scale: state.Scale(e.store), OffsetX: x, OffsetY: y}

	surface.FillRect(0, 0, float64(bw), float64(bh), e.opts.Background)
	lw, lh := g.LogicalSize(view)
	surface.FillRect(view.OffsetX*d, view.OffsetY*d, lw*d, lh*d, e.opts.CanvasBackground)

	for cell, hex := range state.Pixels(e.store) {
		sx, sy, size := g.GridToScreen(view, cell)
		if sx+size <= 0 || sy+size <= 0 || sx >= vw || sy >= vh {
			culled++
			continue
		}
		surface.FillRect(sx*d, sy*d, size*d, size*d, e.colors.get(hex))
		rendered++
	}

	if cell, ok := state.Selected(e.store); ok {
		sx, sy, size := g.GridToScreen(view, cell)
		hl := withAlpha(e.opts.Highlight, e.pulse(now))
		surface.FillRect(sx*d, sy*d, size*d, size*d, hl)
		surface.StrokeRect(sx*d, sy*d, size*d, size*d, 2*d, e.opts.Border)
	}
	return rendered, culled
}

// pulse returns the highlight opacity, oscillating between 0.3 and 0.7.
func (e *Engine) pulse(now time.Time) float64 {
	period := e.opts.PulsePeriod.Milliseconds()
	if period <= 0 {
		return 0.5
	}
	phase := float64(now.UnixMilli()%period) / float64(period)
	v := (math.Sin(phase*2*math.Pi) + 1) / 2
	return 0.3 + 0.4*v
}

// withAlpha scales an opaque color to opacity a, keeping it premultiplied.
func withAlpha(c color.RGBA, a float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(255 * a),
	}
}
