package ebiten

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Surface is the offscreen image the render engine paints the canvas into,
// in device pixels. Draw blits it onto the screen below the header.
type Surface struct {
	img *ebiten.Image
}

// Image returns the backing image, or nil before the first Resize.
func (s *Surface) Image() *ebiten.Image {
	return s.img
}

func (s *Surface) Size() (int, int) {
	if s.img == nil {
		return 0, 0
	}
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize replaces the backing image. Ebiten images cannot be empty, so the
// smallest image is 1x1.
func (s *Surface) Resize(w, h int) {
	if s.img != nil {
		s.img.Deallocate()
	}
	s.img = ebiten.NewImage(max(w, 1), max(h, 1))
}

func (s *Surface) FillRect(x, y, w, h float64, c color.RGBA) {
	if s.img == nil {
		return
	}
	vector.DrawFilledRect(s.img, float32(x), float32(y), float32(w), float32(h), c, false)
}

func (s *Surface) StrokeRect(x, y, w, h, width float64, c color.RGBA) {
	if s.img == nil {
		return
	}
	vector.StrokeRect(s.img, float32(x), float32(y), float32(w), float32(h), float32(width), c, false)
}
