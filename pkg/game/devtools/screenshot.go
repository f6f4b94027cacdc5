// Package devtools provides developer tools for testing and debugging.
package devtools

import (
	"fmt"
	"image/color"
	"log"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"

	"pixelbattle/pkg/game/render"
)

// ImageSurface is a render.Surface backed by a gg drawing context.
type ImageSurface struct {
	dc *gg.Context
}

// NewImageSurface returns a w×h surface.
func NewImageSurface(w, h int) *ImageSurface {
	return &ImageSurface{dc: gg.NewContext(max(w, 1), max(h, 1))}
}

func (s *ImageSurface) Size() (int, int) {
	return s.dc.Width(), s.dc.Height()
}

func (s *ImageSurface) Resize(w, h int) {
	s.dc = gg.NewContext(max(w, 1), max(h, 1))
}

func (s *ImageSurface) FillRect(x, y, w, h float64, c color.RGBA) {
	s.dc.SetColor(c)
	s.dc.DrawRectangle(x, y, w, h)
	s.dc.Fill()
}

func (s *ImageSurface) StrokeRect(x, y, w, h, width float64, c color.RGBA) {
	s.dc.SetColor(c)
	s.dc.SetLineWidth(width)
	s.dc.DrawRectangle(x, y, w, h)
	s.dc.Stroke()
}

// Context exposes the drawing context for captions and tests.
func (s *ImageSurface) Context() *gg.Context {
	return s.dc
}

// SaveScreenshot renders the current view into dir as
// screenshot-YYYYMMDD-HHMMSS.png and returns the file path.
func SaveScreenshot(e *render.Engine, dir string, now time.Time) (string, error) {
	surface := NewImageSurface(e.BackingSize())
	if err := e.Snapshot(surface); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}

	dc := surface.Context()
	caption := now.Format("2006-01-02 15:04:05")
	dc.SetColor(color.RGBA{0, 0, 0, 0xa0})
	dc.DrawRectangle(0, float64(dc.Height())-18, float64(len(caption))*7+12, 18)
	dc.Fill()
	dc.SetColor(color.White)
	dc.DrawString(caption, 6, float64(dc.Height())-5)

	path := filepath.Join(dir, fmt.Sprintf("screenshot-%s.png", now.Format("20060102-150405")))
	if err := dc.SavePNG(path); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	log.Printf("Screenshot saved to %s", path)
	return path, nil
}
