package tui

import (
	icolor "image/color"
	"math"
	"strings"

	"github.com/gookit/color"
)

// halfBlock shows the upper unit in the foreground color and the lower one
// in the background color.
const halfBlock = "▀"

// Surface is a render.Surface drawn with terminal half blocks: every
// character cell shows two vertically stacked units.
type Surface struct {
	w, h int
	px   []icolor.RGBA
}

// NewSurface returns a w×h surface. h is rounded up to an even number.
func NewSurface(w, h int) *Surface {
	s := &Surface{}
	s.Resize(w, h)
	return s
}

func (s *Surface) Size() (int, int) {
	return s.w, s.h
}

func (s *Surface) Resize(w, h int) {
	w = max(w, 1)
	h = max(h, 2)
	h += h % 2
	s.w, s.h = w, h
	s.px = make([]icolor.RGBA, w*h)
}

// At returns the unit at (x, y).
func (s *Surface) At(x, y int) icolor.RGBA {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return icolor.RGBA{}
	}
	return s.px[y*s.w+x]
}

func (s *Surface) span(x, w float64, limit int) (int, int) {
	lo := int(math.Floor(x))
	hi := int(math.Ceil(x + w))
	if hi <= lo {
		hi = lo + 1
	}
	return max(lo, 0), min(hi, limit)
}

func (s *Surface) FillRect(x, y, w, h float64, c icolor.RGBA) {
	x0, x1 := s.span(x, w, s.w)
	y0, y1 := s.span(y, h, s.h)
	for py := y0; py < y1; py++ {
		row := s.px[py*s.w : (py+1)*s.w]
		for px := x0; px < x1; px++ {
			row[px] = over(c, row[px])
		}
	}
}

// StrokeRect outlines the rectangle one unit thick; terminal units are too
// coarse for wider lines.
func (s *Surface) StrokeRect(x, y, w, h, _ float64, c icolor.RGBA) {
	s.FillRect(x, y, w, 1, c)
	s.FillRect(x, y+h-1, w, 1, c)
	s.FillRect(x, y, 1, h, c)
	s.FillRect(x+w-1, y, 1, h, c)
}

// over composites premultiplied src onto dst.
func over(src, dst icolor.RGBA) icolor.RGBA {
	if src.A == 0xff {
		return src
	}
	k := 1 - float64(src.A)/0xff
	return icolor.RGBA{
		R: src.R + scale(dst.R, k),
		G: src.G + scale(dst.G, k),
		B: src.B + scale(dst.B, k),
		A: src.A + scale(dst.A, k),
	}
}

func scale(v uint8, k float64) uint8 {
	return uint8(math.Round(float64(v) * k))
}

// Lines renders the surface as h/2 lines of colored half blocks. Runs of
// equal cells share one escape sequence.
func (s *Surface) Lines() []string {
	lines := make([]string, 0, s.h/2)
	var b strings.Builder
	for row := 0; row < s.h; row += 2 {
		b.Reset()
		top := s.px[row*s.w : (row+1)*s.w]
		bottom := s.px[(row+1)*s.w : (row+2)*s.w]
		for x := 0; x < s.w; {
			run := 1
			for x+run < s.w && top[x+run] == top[x] && bottom[x+run] == bottom[x] {
				run++
			}
			style := color.NewRGBStyle(rgb(top[x], false), rgb(bottom[x], true))
			b.WriteString(style.Sprint(strings.Repeat(halfBlock, run)))
			x += run
		}
		lines = append(lines, b.String())
	}
	return lines
}

func rgb(c icolor.RGBA, bg bool) color.RGBColor {
	return color.RGB(c.R, c.G, c.B, bg)
}
