package ebiten

import (
	"math"

	"pixelbattle/pkg/game/viewport"
)

// rect is an axis-aligned box in logical window units.
type rect struct {
	x, y, w, h float64
}

func (r rect) contains(p viewport.Point) bool {
	return p.X >= r.x && p.X < r.x+r.w && p.Y >= r.y && p.Y < r.y+r.h
}

// layout splits the window into the header strip, the canvas area and the
// optional palette sidebar on the right.
type layout struct {
	width, height float64
	sidebarOpen   bool
	colors        int
}

func (l layout) headerHeight() float64 {
	return baseFontSize + headerPadding
}

// canvas is the area the pixel grid is drawn in. Its size is what the client
// sees as the container.
func (l layout) canvas() rect {
	w := l.width
	if l.sidebarOpen {
		w -= sidebarWidth
	}
	top := l.headerHeight()
	return rect{x: 0, y: top, w: max(w, 0), h: max(l.height-top, 0)}
}

func (l layout) sidebar() rect {
	if !l.sidebarOpen {
		return rect{}
	}
	top := l.headerHeight()
	return rect{x: l.width - sidebarWidth, y: top, w: sidebarWidth, h: max(l.height-top, 0)}
}

// swatchTop is where the first swatch row starts, under the panel title.
func (l layout) swatchTop() float64 {
	return l.sidebar().y + sidebarPadding + baseFontSize + swatchGap
}

func (l layout) swatch(i int) rect {
	sb := l.sidebar()
	col, row := i%swatchColumns, i/swatchColumns
	return rect{
		x: sb.x + sidebarPadding + float64(col)*(swatchSize+swatchGap),
		y: l.swatchTop() + float64(row)*(swatchSize+swatchGap),
		w: swatchSize,
		h: swatchSize,
	}
}

func (l layout) placeButton() rect {
	sb := l.sidebar()
	rows := math.Ceil(float64(l.colors) / swatchColumns)
	return rect{
		x: sb.x + sidebarPadding,
		y: l.swatchTop() + rows*(swatchSize+swatchGap) + sidebarPadding,
		w: sidebarWidth - 2*sidebarPadding,
		h: buttonHeight,
	}
}

// infoTop is where the selection details start, under the place button.
func (l layout) infoTop() float64 {
	b := l.placeButton()
	return b.y + b.h + sidebarPadding
}

// swatchAt returns the palette index under p, or -1.
func (l layout) swatchAt(p viewport.Point) int {
	if !l.sidebarOpen {
		return -1
	}
	for i := range l.colors {
		if l.swatch(i).contains(p) {
			return i
		}
	}
	return -1
}

// toCanvas converts a window point to canvas container coordinates.
func (l layout) toCanvas(p viewport.Point) viewport.Point {
	c := l.canvas()
	return viewport.Point{X: p.X - c.x, Y: p.Y - c.y}
}
