package viewport

import (
	"math"
	"testing"

	"pixelbattle/pkg/game/state"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestScreenToGrid_Scenario(t *testing.T) {
	g := Geometry{Width: 1600, Height: 400, PixelSize: 5}
	v := View{Scale: 1, OffsetX: 0, OffsetY: 60}

	got, ok := g.ScreenToGrid(v, 100, 160)
	if !ok || got != (state.Cell{X: 20, Y: 20}) {
		t.Errorf("ScreenToGrid(100,160) = %v, %v, want {20 20}, true", got, ok)
	}
}

func TestScreenToGrid_OffGrid(t *testing.T) {
	g := Geometry{Width: 10, Height: 10, PixelSize: 5}
	v := View{Scale: 1}
	points := [][2]float64{{-1, 0}, {0, -0.1}, {50, 0}, {0, 50}, {1000, 1000}}
	for _, p := range points {
		if c, ok := g.ScreenToGrid(v, p[0], p[1]); ok {
			t.Errorf("ScreenToGrid(%v) = %v, true, want no selection", p, c)
		}
	}
}

func TestGridToScreen_RoundTrip(t *testing.T) {
	g := Geometry{Width: 2000, Height: 600, PixelSize: 5}
	views := []View{
		{Scale: 1},
		{Scale: 0.1, OffsetX: 13.7, OffsetY: -2.25},
		{Scale: 1.2, OffsetX: -80, OffsetY: -60},
		{Scale: 7.3, OffsetX: -12345.6, OffsetY: 321.9},
		{Scale: 10, OffsetX: -99999, OffsetY: -29000},
	}
	cells := []state.Cell{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 20, Y: 20}, {X: 1999, Y: 599}, {X: 1000, Y: 3}}
	for _, v := range views {
		for _, c := range cells {
			x, y, size := g.GridToScreen(v, c)
			got, ok := g.ScreenToGrid(v, x+size/2, y+size/2)
			if !ok || got != c {
				t.Errorf("round trip %v at %+v = %v, %v", c, v, got, ok)
			}
		}
	}
}

func TestClampAxis(t *testing.T) {
	tests := []struct {
		name                      string
		offset, logical, viewport float64
		want                      float64
	}{
		{"larger, inside range", -100, 1000, 800, -100},
		{"larger, dragged too far right", 50, 1000, 800, 0},
		{"larger, dragged too far left", -500, 1000, 800, -200},
		{"smaller, within slack", 100, 600, 800, 100},
		{"smaller, past slack", 300, 600, 800, 200},
		{"smaller, negative", -10, 600, 800, 0},
		{"equal, no slack", 25, 800, 800, 0},
		{"equal, negative", -25, 800, 800, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampAxis(tt.offset, tt.logical, tt.viewport); got != tt.want {
				t.Errorf("ClampAxis(%v, %v, %v) = %v, want %v", tt.offset, tt.logical, tt.viewport, got, tt.want)
			}
		})
	}
}

func TestClamp_Idempotent(t *testing.T) {
	g := Geometry{Width: 2000, Height: 600, PixelSize: 5}
	sizes := [][2]float64{{800, 600}, {10000, 3000}, {1280, 800}, {3000, 3000}}
	for _, sz := range sizes {
		for _, s := range []float64{0.1, 0.3, 1, 2.5, 10} {
			for _, off := range []float64{-1e6, -5000, -1, 0, 1, 400, 1e6} {
				v := View{Scale: s, OffsetX: off, OffsetY: -off}
				once := g.Clamp(v, sz[0], sz[1])
				twice := g.Clamp(once, sz[0], sz[1])
				if once != twice {
					t.Errorf("Clamp not idempotent for %+v in %v: %+v then %+v", v, sz, once, twice)
				}
			}
		}
	}
}

func TestZoomAt_KeepsPointFixed(t *testing.T) {
	lim := Limits{MinScale: 0.1, MaxScale: 10}
	v := View{Scale: 1}

	got := ZoomAt(v, 400, 300, 1.2, lim)

	if !near(got.Scale, 1.2) {
		t.Fatalf("scale = %v, want 1.2", got.Scale)
	}
	// World point under (400,300) before: (400,300)/1. After: (400-off)/1.2.
	wx := (400 - got.OffsetX) / got.Scale
	wy := (300 - got.OffsetY) / got.Scale
	if !near(wx, 400) || !near(wy, 300) {
		t.Errorf("world point under cursor moved to (%v, %v), want (400, 300)", wx, wy)
	}
	if !near(got.OffsetX, -80) || !near(got.OffsetY, -60) {
		t.Errorf("offset = (%v, %v), want (-80, -60)", got.OffsetX, got.OffsetY)
	}
}

func TestZoomAt_ClampsScale(t *testing.T) {
	lim := Limits{MinScale: 0.5, MaxScale: 2}
	if got := ZoomAt(View{Scale: 1.9}, 0, 0, 5, lim); got.Scale != 2 {
		t.Errorf("scale = %v, want max 2", got.Scale)
	}
	if got := ZoomAt(View{Scale: 0.6}, 0, 0, 0.01, lim); got.Scale != 0.5 {
		t.Errorf("scale = %v, want min 0.5", got.Scale)
	}
}

func TestCenter(t *testing.T) {
	g := Geometry{Width: 100, Height: 50, PixelSize: 4}
	got := g.Center(View{Scale: 1}, 800, 600)
	if got.OffsetX != 200 || got.OffsetY != 200 {
		t.Errorf("Center = (%v, %v), want (200, 200)", got.OffsetX, got.OffsetY)
	}
	if c := g.Clamp(got, 800, 600); c != got {
		t.Errorf("centered view is not within bounds: %+v -> %+v", got, c)
	}
}

func TestVisible(t *testing.T) {
	g := Geometry{Width: 100, Height: 100, PixelSize: 10}
	x0, y0, x1, y1 := g.Visible(View{Scale: 1, OffsetX: -55, OffsetY: 0}, 100, 1000)
	if x0 != 5 || y0 != 0 || x1 != 16 || y1 != 100 {
		t.Errorf("Visible = (%d,%d)-(%d,%d), want (5,0)-(16,100)", x0, y0, x1, y1)
	}
}
