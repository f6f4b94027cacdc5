package viewport

import (
	"math"
	"time"

	"pixelbattle/pkg/engine/loop"
	"pixelbattle/pkg/engine/store"
	"pixelbattle/pkg/game/state"
)

// Button identifies a mouse button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// Point is a position in container coordinates.
type Point struct {
	X, Y float64
}

func (p Point) dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

func mid(p, q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// Action is a discrete keyboard command.
type Action int

const (
	ActionPanUp Action = iota
	ActionPanDown
	ActionPanLeft
	ActionPanRight
	ActionZoomIn
	ActionZoomOut
	ActionZoomReset
	ActionCenter
	ActionToggleSidebar
)

// Container reports the current size of the area the canvas is shown in.
// It is asked on every pan or zoom step.
type Container interface {
	Size() (w, h float64)
}

// ContainerFunc adapts a function to Container.
type ContainerFunc func() (w, h float64)

// Size implements Container.
func (f ContainerFunc) Size() (w, h float64) { return f() }

// Options tune gestures.
type Options struct {
	Geometry Geometry
	Limits   Limits

	// PanStep is the distance moved by one keyboard pan.
	PanStep float64
	// ZoomStep is the factor applied by one keyboard zoom.
	ZoomStep float64
	// WheelStep is the factor applied per wheel notch.
	WheelStep float64
	// Slop is how far a press may travel and still count as a click.
	Slop float64

	DoubleClick time.Duration
	LongPress   time.Duration
}

// DefaultOptions returns gesture settings for a grid.
func DefaultOptions(g Geometry, l Limits) Options {
	return Options{
		Geometry:    g,
		Limits:      l,
		PanStep:     50,
		ZoomStep:    1.2,
		WheelStep:   1.1,
		Slop:        5,
		DoubleClick: 300 * time.Millisecond,
		LongPress:   500 * time.Millisecond,
	}
}

type mode int

const (
	modeIdle mode = iota
	// primary button or one finger down, not moved yet
	modePress
	// secondary drag or one-finger drag
	modePan
	modePinch
	// finished, waiting for the remaining fingers to lift
	modeDone
)

// Controller turns device input into viewport and selection writes. All
// methods run on the loop goroutine.
type Controller struct {
	opts      Options
	store     *store.Store
	container Container
	timers    *loop.Scope

	// OnContext is called when a long press lands on a cell.
	OnContext func(c state.Cell, at Point)

	mode      mode
	start     Point
	startView View
	touches   map[int]Point
	pinchDist float64
	longPress loop.Timer
	longFired bool
	lastTap   *Point
	tapTimer  loop.Timer
}

// NewController returns an idle controller writing to s.
func NewController(opts Options, s *store.Store, c Container, clock loop.Clock) *Controller {
	return &Controller{
		opts:      opts,
		store:     s,
		container: c,
		timers:    loop.NewScope(clock),
		touches:   make(map[int]Point),
	}
}

// Close cancels pending gesture timers.
func (c *Controller) Close() {
	c.timers.Stop()
}

// View returns the transform currently in the Store.
func (c *Controller) View() View {
	x, y := state.Offset(c.store)
	return View{Scale: state.Scale(c.store), OffsetX: x, OffsetY: y}
}

// Geometry returns the grid shape.
func (c *Controller) Geometry() Geometry {
	return c.opts.Geometry
}

func (c *Controller) write(v View) {
	w, h := c.container.Size()
	v = c.opts.Geometry.Clamp(v, w, h)
	c.store.BatchUpdate(map[string]any{
		state.PathScale:   v.Scale,
		state.PathOffsetX: v.OffsetX,
		state.PathOffsetY: v.OffsetY,
	})
}

// CellAt returns the cell under a container point.
func (c *Controller) CellAt(p Point) (state.Cell, bool) {
	return c.opts.Geometry.ScreenToGrid(c.View(), p.X, p.Y)
}

// SelectAt selects the cell under p, or clears the selection when p is off
// the grid.
func (c *Controller) SelectAt(p Point) {
	cell, ok := c.CellAt(p)
	c.Select(cell, ok)
}

// Select sets or clears the selection directly. Cells off the grid clear it.
func (c *Controller) Select(cell state.Cell, ok bool) {
	if !ok || !c.opts.Geometry.Contains(cell) {
		c.store.Set(state.PathSelected, (*state.Cell)(nil))
		return
	}
	c.store.Set(state.PathSelected, &cell)
}

// PanBy moves the canvas by (dx, dy) screen units.
func (c *Controller) PanBy(dx, dy float64) {
	v := c.View()
	v.OffsetX += dx
	v.OffsetY += dy
	c.write(v)
}

// ZoomAt multiplies the scale by factor around p.
func (c *Controller) ZoomAt(p Point, factor float64) {
	v := c.View()
	c.write(ZoomAt(v, p.X, p.Y, v.Scale*factor, c.opts.Limits))
}

// Center places the whole canvas in the middle of the container.
func (c *Controller) Center() {
	w, h := c.container.Size()
	c.write(c.opts.Geometry.Center(c.View(), w, h))
}

// CenterOn selects cell and scrolls it to the middle of the container, as far
// as the bounds allow.
func (c *Controller) CenterOn(cell state.Cell) bool {
	g := c.opts.Geometry
	if !g.Contains(cell) {
		return false
	}
	v := c.View()
	w, h := c.container.Size()
	cs := g.CellSize(v)
	v.OffsetX = w/2 - (float64(cell.X)+0.5)*cs
	v.OffsetY = h/2 - (float64(cell.Y)+0.5)*cs
	c.write(v)
	c.Select(cell, true)
	return true
}

// MoveSelection steps the selection by (dx, dy) cells, stopping at the grid
// edge. Without a selection it selects the cell under the middle of the
// container. The view follows a selection that leaves it.
func (c *Controller) MoveSelection(dx, dy int) {
	cell, ok := state.Selected(c.store)
	if !ok {
		c.SelectAt(c.middle())
		return
	}
	g := c.opts.Geometry
	cell.X = min(max(cell.X+dx, 0), g.Width-1)
	cell.Y = min(max(cell.Y+dy, 0), g.Height-1)
	c.Select(cell, true)
	c.reveal(cell)
}

func (c *Controller) reveal(cell state.Cell) {
	v := c.View()
	w, h := c.container.Size()
	x, y, size := c.opts.Geometry.GridToScreen(v, cell)
	moved := v
	if x < 0 {
		moved.OffsetX -= x
	} else if x+size > w {
		moved.OffsetX -= x + size - w
	}
	if y < 0 {
		moved.OffsetY -= y
	} else if y+size > h {
		moved.OffsetY -= y + size - h
	}
	if moved != v {
		c.write(moved)
	}
}

// Reclamp re-applies the bounds after the container changed size.
func (c *Controller) Reclamp() {
	c.write(c.View())
}

// Action runs a keyboard command.
func (c *Controller) Action(a Action) {
	step := c.opts.PanStep
	switch a {
	case ActionPanUp:
		c.PanBy(0, step)
	case ActionPanDown:
		c.PanBy(0, -step)
	case ActionPanLeft:
		c.PanBy(step, 0)
	case ActionPanRight:
		c.PanBy(-step, 0)
	case ActionZoomIn:
		c.ZoomAt(c.middle(), c.opts.ZoomStep)
	case ActionZoomOut:
		c.ZoomAt(c.middle(), 1/c.opts.ZoomStep)
	case ActionZoomReset:
		v := c.View()
		v.Scale = c.opts.Limits.ClampScale(1)
		w, h := c.container.Size()
		c.write(c.opts.Geometry.Center(v, w, h))
	case ActionCenter:
		c.Center()
	case ActionToggleSidebar:
		c.store.Set(state.PathSidebarOpen, !state.SidebarOpen(c.store))
	}
}

func (c *Controller) middle() Point {
	w, h := c.container.Size()
	return Point{X: w / 2, Y: h / 2}
}

// Wheel zooms around p by WheelStep per notch; positive notches zoom in.
func (c *Controller) Wheel(p Point, notches float64) {
	if notches == 0 {
		return
	}
	c.ZoomAt(p, math.Pow(c.opts.WheelStep, notches))
}

// PointerDown starts a mouse gesture.
func (c *Controller) PointerDown(b Button, p Point) {
	if c.mode != modeIdle {
		return
	}
	c.start = p
	c.startView = c.View()
	switch b {
	case ButtonPrimary:
		c.mode = modePress
	case ButtonSecondary:
		c.mode = modePan
	}
}

// PointerMove continues a mouse gesture.
func (c *Controller) PointerMove(p Point) {
	switch c.mode {
	case modePress:
		if p.dist(c.start) > c.opts.Slop {
			// A primary drag is not a click
			c.mode = modeDone
		}
	case modePan:
		c.panFromStart(p)
	}
}

// PointerUp ends a mouse gesture.
func (c *Controller) PointerUp(b Button, p Point) {
	switch {
	case c.mode == modePress && b == ButtonPrimary:
		c.tap(p)
	case c.mode == modePan && b == ButtonSecondary:
		c.panFromStart(p)
	}
	c.mode = modeIdle
}

func (c *Controller) panFromStart(p Point) {
	v := c.startView
	v.Scale = c.View().Scale
	v.OffsetX += p.X - c.start.X
	v.OffsetY += p.Y - c.start.Y
	c.write(v)
}

// tap handles a click or tap that did not move: a second one inside the
// double-click window centers, otherwise it selects.
func (c *Controller) tap(p Point) {
	if c.lastTap != nil && p.dist(*c.lastTap) <= c.opts.Slop*4 {
		c.clearTap()
		c.Center()
		return
	}
	c.SelectAt(p)
	c.clearTap()
	c.lastTap = &p
	c.tapTimer = c.timers.AfterFunc(c.opts.DoubleClick, func() {
		c.lastTap = nil
		c.tapTimer = nil
	})
}

func (c *Controller) clearTap() {
	if c.tapTimer != nil {
		c.tapTimer.Stop()
		c.tapTimer = nil
	}
	c.lastTap = nil
}

// TouchStart registers a finger.
func (c *Controller) TouchStart(id int, p Point) {
	c.touches[id] = p
	switch len(c.touches) {
	case 1:
		if c.mode != modeIdle {
			return
		}
		c.mode = modePress
		c.start = p
		c.startView = c.View()
		c.longFired = false
		c.longPress = c.timers.AfterFunc(c.opts.LongPress, func() {
			c.longPress = nil
			c.fireLongPress()
		})
	case 2:
		// A second finger cancels any one-finger drag and switches to zoom
		c.cancelLongPress()
		c.mode = modePinch
		a, b := c.pair()
		c.pinchDist = a.dist(b)
	default:
		c.cancelLongPress()
		c.mode = modeDone
	}
}

// TouchMove updates a finger.
func (c *Controller) TouchMove(id int, p Point) {
	if _, ok := c.touches[id]; !ok {
		return
	}
	c.touches[id] = p
	switch c.mode {
	case modePress:
		if p.dist(c.start) > c.opts.Slop {
			c.cancelLongPress()
			c.mode = modePan
			c.panFromStart(p)
		}
	case modePan:
		c.panFromStart(p)
	case modePinch:
		a, b := c.pair()
		d := a.dist(b)
		if c.pinchDist > 0 && d > 0 {
			c.ZoomAt(mid(a, b), d/c.pinchDist)
		}
		c.pinchDist = d
	}
}

// TouchEnd removes a finger.
func (c *Controller) TouchEnd(id int) {
	p, ok := c.touches[id]
	if !ok {
		return
	}
	delete(c.touches, id)
	c.cancelLongPress()

	switch c.mode {
	case modePress:
		if !c.longFired {
			c.tap(p)
		}
	case modePinch:
		// Lifting one finger ends the pinch; the other must lift before a
		// new gesture starts
		c.mode = modeDone
	}
	if len(c.touches) == 0 {
		c.mode = modeIdle
	}
}

func (c *Controller) pair() (Point, Point) {
	var pts []Point
	for _, p := range c.touches {
		pts = append(pts, p)
		if len(pts) == 2 {
			break
		}
	}
	return pts[0], pts[1]
}

func (c *Controller) cancelLongPress() {
	if c.longPress != nil {
		c.longPress.Stop()
		c.longPress = nil
	}
}

func (c *Controller) fireLongPress() {
	if c.mode != modePress {
		return
	}
	c.longFired = true
	c.mode = modeDone
	cell, ok := c.CellAt(c.start)
	if ok && c.OnContext != nil {
		c.OnContext(cell, c.start)
	}
}
