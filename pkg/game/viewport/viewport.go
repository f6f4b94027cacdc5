// Package viewport maps between screen space and the canvas grid and turns
// pointer, touch and keyboard input into pan, zoom and selection.
package viewport

import (
	"math"

	"pixelbattle/pkg/game/state"
)

// Geometry is the fixed shape of the logical canvas.
type Geometry struct {
	// Width and Height are the grid size in cells.
	Width, Height int
	// PixelSize is the edge of one cell in screen units at scale 1.
	PixelSize float64
}

// View is the current transform: screen = grid·PixelSize·Scale + Offset.
type View struct {
	Scale            float64
	OffsetX, OffsetY float64
}

// Limits bound the zoom factor.
type Limits struct {
	MinScale, MaxScale float64
}

// ClampScale returns s limited to [MinScale, MaxScale].
func (l Limits) ClampScale(s float64) float64 {
	return math.Max(l.MinScale, math.Min(l.MaxScale, s))
}

// CellSize returns the on-screen edge of one cell.
func (g Geometry) CellSize(v View) float64 {
	return g.PixelSize * v.Scale
}

// LogicalSize returns the on-screen size of the whole canvas.
func (g Geometry) LogicalSize(v View) (w, h float64) {
	cs := g.CellSize(v)
	return float64(g.Width) * cs, float64(g.Height) * cs
}

// Contains reports whether c lies on the grid.
func (g Geometry) Contains(c state.Cell) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

// ScreenToGrid returns the cell under a screen point. Points off the grid
// report false.
func (g Geometry) ScreenToGrid(v View, sx, sy float64) (state.Cell, bool) {
	cs := g.CellSize(v)
	if cs <= 0 {
		return state.Cell{}, false
	}
	c := state.Cell{
		X: int(math.Floor((sx - v.OffsetX) / cs)),
		Y: int(math.Floor((sy - v.OffsetY) / cs)),
	}
	if !g.Contains(c) {
		return state.Cell{}, false
	}
	return c, true
}

// GridToScreen returns the top-left corner and edge length of a cell on
// screen.
func (g Geometry) GridToScreen(v View, c state.Cell) (x, y, size float64) {
	size = g.CellSize(v)
	return float64(c.X)*size + v.OffsetX, float64(c.Y)*size + v.OffsetY, size
}

// ClampAxis bounds one offset component. A canvas larger than the viewport
// may be dragged until its far edge meets the viewport edge. A smaller or
// equal canvas stays fully visible, free to move within the slack.
func ClampAxis(offset, logical, viewport float64) float64 {
	if logical > viewport {
		return math.Min(0, math.Max(offset, viewport-logical))
	}
	slack := viewport - logical
	return math.Max(0, math.Min(offset, slack))
}

// Clamp bounds both offsets for a viewport of vw×vh.
func (g Geometry) Clamp(v View, vw, vh float64) View {
	lw, lh := g.LogicalSize(v)
	v.OffsetX = ClampAxis(v.OffsetX, lw, vw)
	v.OffsetY = ClampAxis(v.OffsetY, lh, vh)
	return v
}

// ZoomAt changes the scale to newScale, limited by lim, keeping the grid
// point under (px, py) fixed on screen. The offset is not clamped.
func ZoomAt(v View, px, py, newScale float64, lim Limits) View {
	newScale = lim.ClampScale(newScale)
	if v.Scale <= 0 {
		v.Scale = newScale
		return v
	}
	return View{
		Scale:   newScale,
		OffsetX: px - (px-v.OffsetX)/v.Scale*newScale,
		OffsetY: py - (py-v.OffsetY)/v.Scale*newScale,
	}
}

// Center positions the whole canvas in the middle of a vw×vh viewport.
func (g Geometry) Center(v View, vw, vh float64) View {
	lw, lh := g.LogicalSize(v)
	v.OffsetX = (vw - lw) / 2
	v.OffsetY = (vh - lh) / 2
	return v
}

// Visible returns the grid-space rectangle [x0,x1)×[y0,y1) shown in a vw×vh
// viewport, limited to the grid.
func (g Geometry) Visible(v View, vw, vh float64) (x0, y0, x1, y1 int) {
	cs := g.CellSize(v)
	if cs <= 0 {
		return 0, 0, 0, 0
	}
	x0 = max(0, int(math.Floor(-v.OffsetX/cs)))
	y0 = max(0, int(math.Floor(-v.OffsetY/cs)))
	x1 = min(g.Width, int(math.Ceil((vw-v.OffsetX)/cs)))
	y1 = min(g.Height, int(math.Ceil((vh-v.OffsetY)/cs)))
	return x0, y0, x1, y1
}
