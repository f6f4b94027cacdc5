package render

import (
	"errors"
	"fmt"
	"image/color"
	"testing"
	"time"

	"pixelbattle/pkg/engine/store"
	"pixelbattle/pkg/game/state"
	"pixelbattle/pkg/game/viewport"
)

type rect struct {
	x, y, w, h float64
	c          color.RGBA
	stroke     bool
}

type recordingSurface struct {
	w, h    int
	resizes int
	ops     []rect
}

func (s *recordingSurface) Size() (int, int) { return s.w, s.h }

func (s *recordingSurface) Resize(w, h int) {
	s.w, s.h = w, h
	s.resizes++
}

func (s *recordingSurface) FillRect(x, y, w, h float64, c color.RGBA) {
	s.ops = append(s.ops, rect{x, y, w, h, c, false})
}

func (s *recordingSurface) StrokeRect(x, y, w, h, _ float64, c color.RGBA) {
	s.ops = append(s.ops, rect{x, y, w, h, c, true})
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time { return c.t }

func newEngine(t *testing.T) (*Engine, *store.Store, *recordingSurface, *fixedClock) {
	t.Helper()
	s := store.New()
	state.Init(s, state.Defaults{Color: "#000000"})
	clock := &fixedClock{t: time.Unix(1000, 0)}
	opts := DefaultOptions(viewport.Geometry{Width: 100, Height: 100, PixelSize: 5})
	e := New(s, opts, clock.now)
	t.Cleanup(e.Close)
	e.Resize(800, 600, 1)
	return e, s, &recordingSurface{w: 800, h: 600}, clock
}

func TestFrame_NilSurface(t *testing.T) {
	e, _, _, _ := newEngine(t)
	if _, err := e.Frame(nil); !errors.Is(err, ErrNoSurface) {
		t.Errorf("Frame(nil) error = %v, want ErrNoSurface", err)
	}
}

func TestFrame_CoalescesWritesIntoOnePaint(t *testing.T) {
	e, s, surf, clock := newEngine(t)
	e.Frame(surf)
	before := e.Paints()

	s.Set(state.PathOffsetX, 1.0)
	s.Set(state.PathOffsetY, 2.0)
	s.Set(state.PathScale, 1.5)
	state.PutPixels(s, state.Pixel{X: 1, Y: 1, Color: "#FF0000"})
	s.Set(state.PathOffsetX, 3.0)

	clock.t = clock.t.Add(16 * time.Millisecond)
	painted, err := e.Frame(surf)
	if err != nil || !painted {
		t.Fatalf("Frame = %v, %v, want painted", painted, err)
	}
	clock.t = clock.t.Add(16 * time.Millisecond)
	if painted, _ := e.Frame(surf); painted {
		t.Error("second frame painted without new writes")
	}
	if got := e.Paints() - before; got != 1 {
		t.Errorf("paints = %d, want 1", got)
	}
}

func TestFrame_IdleWithoutChanges(t *testing.T) {
	e, _, surf, _ := newEngine(t)
	e.Frame(surf)
	for i := 0; i < 5; i++ {
		if painted, _ := e.Frame(surf); painted {
			t.Fatalf("frame %d painted with nothing dirty", i)
		}
	}
}

func TestFrame_NonCanvasWritesDoNotRepaint(t *testing.T) {
	e, s, surf, _ := newEngine(t)
	e.Frame(surf)
	s.Set(state.PathOnlineUsers, 12)
	if painted, _ := e.Frame(surf); painted {
		t.Error("connection write caused a paint")
	}
}

func TestResize_RepaintsAndResizesBacking(t *testing.T) {
	e, _, surf, _ := newEngine(t)
	e.Frame(surf)

	e.Resize(400, 300, 2)
	if painted, _ := e.Frame(surf); !painted {
		t.Fatal("resize did not trigger a paint")
	}
	if surf.w != 800 || surf.h != 600 || surf.resizes != 0 {
		t.Errorf("backing = %dx%d after %d resizes, want 800x600 unchanged", surf.w, surf.h, surf.resizes)
	}

	e.Resize(500, 300, 2)
	e.Frame(surf)
	if surf.w != 1000 || surf.h != 600 {
		t.Errorf("backing = %dx%d, want 1000x600", surf.w, surf.h)
	}
	if !e.Dirty() {
		t.Error("resized backing did not schedule a follow-up paint")
	}
}

func TestPaint_CullsOffscreenPixels(t *testing.T) {
	e, s, surf, _ := newEngine(t)
	state.PutPixels(s,
		state.Pixel{X: 0, Y: 0, Color: "#FF0000"},
		state.Pixel{X: 10, Y: 10, Color: "#00FF00"},
		state.Pixel{X: 99, Y: 99, Color: "#0000FF"},
	)
	// Cell (99,99) is at 495..500 on screen; shift it past the right edge
	s.BatchUpdate(map[string]any{state.PathOffsetX: 400.0, state.PathOffsetY: 0.0})

	e.Frame(surf)

	if got := store.ValueOr(s, state.PathRenderedPixels, -1); got != 2 {
		t.Errorf("rendered = %d, want 2", got)
	}
	if got := store.ValueOr(s, state.PathCulledPixels, -1); got != 1 {
		t.Errorf("culled = %d, want 1", got)
	}
	if got := store.ValueOr(s, state.PathFrames, 0); got != e.Paints() {
		t.Errorf("metrics.frames = %d, want %d", got, e.Paints())
	}
}

func TestPaint_Order(t *testing.T) {
	e, s, surf, _ := newEngine(t)
	state.PutPixels(s, state.Pixel{X: 2, Y: 3, Color: "#FF0000"})
	s.Set(state.PathSelected, &state.Cell{X: 2, Y: 3})

	e.Frame(surf)

	ops := surf.ops
	if len(ops) != 5 {
		t.Fatalf("ops = %d, want 5 (background, canvas, pixel, highlight, border)", len(ops))
	}
	opts := DefaultOptions(e.opts.Geometry)
	if ops[0].c != opts.Background || ops[0].w != 800 {
		t.Errorf("first op = %+v, want full background", ops[0])
	}
	if ops[1].c != opts.CanvasBackground || ops[1].w != 500 || ops[1].h != 500 {
		t.Errorf("second op = %+v, want 500x500 canvas background", ops[1])
	}
	if ops[2].c != (color.RGBA{0xff, 0, 0, 0xff}) || ops[2].x != 10 || ops[2].y != 15 {
		t.Errorf("pixel op = %+v, want red at (10,15)", ops[2])
	}
	if ops[3].c.A == 0 || ops[3].c.A == 0xff || !ops[4].stroke {
		t.Errorf("selection ops = %+v, %+v, want translucent fill then border", ops[3], ops[4])
	}
}

func TestPaint_DevicePixelRatio(t *testing.T) {
	e, s, surf, _ := newEngine(t)
	e.Resize(400, 300, 2)
	state.PutPixels(s, state.Pixel{X: 1, Y: 0, Color: "#00FF00"})

	e.Frame(surf)

	var found bool
	for _, op := range surf.ops {
		if op.c == (color.RGBA{0, 0xff, 0, 0xff}) {
			found = true
			if op.x != 10 || op.w != 10 {
				t.Errorf("pixel at x=%v w=%v, want 10 and 10 in device pixels", op.x, op.w)
			}
		}
	}
	if !found {
		t.Error("pixel not painted")
	}
}

func TestSelectionPulse_RepaintsThrottled(t *testing.T) {
	e, s, surf, clock := newEngine(t)
	s.Set(state.PathSelected, &state.Cell{X: 1, Y: 1})
	e.Frame(surf)

	clock.t = clock.t.Add(16 * time.Millisecond)
	if painted, _ := e.Frame(surf); painted {
		t.Error("pulse repainted inside the throttle interval")
	}
	clock.t = clock.t.Add(100 * time.Millisecond)
	if painted, _ := e.Frame(surf); !painted {
		t.Error("pulse did not repaint after the throttle interval")
	}
}

func TestPulse_Range(t *testing.T) {
	e, _, _, _ := newEngine(t)
	for ms := int64(0); ms < 2000; ms += 37 {
		v := e.pulse(time.UnixMilli(ms))
		if v < 0.3-1e-9 || v > 0.7+1e-9 {
			t.Fatalf("pulse(%dms) = %v, want within [0.3, 0.7]", ms, v)
		}
	}
}

func TestColorCache_InvalidFallsBack(t *testing.T) {
	c := newColorCache()
	if got := c.get("nonsense"); got != fallbackColor {
		t.Errorf("get(nonsense) = %v, want fallback", got)
	}
	if got := c.get("#0000FF"); got != (color.RGBA{0, 0, 0xff, 0xff}) {
		t.Errorf("get(#0000FF) = %v", got)
	}
}

func TestColorCache_Bounded(t *testing.T) {
	c := newColorCache()
	for i := range 3 * maxCachedColors {
		c.get(fmt.Sprintf("#%06X", i))
	}
	if n := len(c.parsed); n > maxCachedColors {
		t.Errorf("cache holds %d colors, want at most %d", n, maxCachedColors)
	}
	if got := c.get("#000010"); got != (color.RGBA{0, 0, 0x10, 0xff}) {
		t.Errorf("get(#000010) after eviction = %v", got)
	}
}
