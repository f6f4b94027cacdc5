package ebiten

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/leonelquinteros/gotext"
)

// dynamicGet is used for runtime translation key lookups such as status
// names, keeping go vet's non-constant format string check quiet.
var dynamicGet = gotext.Get

// drawColoredText draws text with a specific color using the sans-serif UI
// font. x and y are the top-left corner in device pixels.
func (e *EbitenRenderer) drawColoredText(screen *ebiten.Image, str string, x, y float64, col color.Color) {
	e.drawColoredTextWithFace(screen, str, x, y, col, e.getSansFontFace())
}

// drawColoredTextWithFace draws text with a specific color and font face.
// Uses the face's size for baseline offset so different font sizes position correctly.
func (e *EbitenRenderer) drawColoredTextWithFace(screen *ebiten.Image, str string, x, y float64, col color.Color, face *text.GoTextFace) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y+face.Size*0.15)
	op.ColorScale.ScaleWithColor(col)
	text.Draw(screen, str, face, op)
}

// applyAlpha applies an alpha value to a color. Colors fade to transparent
// black, not transparent bright colors.
func applyAlpha(c color.Color, alpha float64) color.RGBA {
	alpha = min(max(alpha, 0), 1)

	r, g, b, a := c.RGBA()
	return color.RGBA{
		R: uint8(float64(r>>8) * alpha),
		G: uint8(float64(g>>8) * alpha),
		B: uint8(float64(b>>8) * alpha),
		A: uint8(float64(a>>8) * alpha),
	}
}

// getTextWidth returns the width of a string in device pixels at UI font size
func (e *EbitenRenderer) getTextWidth(str string) float64 {
	return e.getTextWidthWithFace(str, e.getSansFontFace())
}

// getTextWidthWithFace returns the width of a string using the given font face.
func (e *EbitenRenderer) getTextWidthWithFace(str string, face *text.GoTextFace) float64 {
	w, _ := text.Measure(str, face, 0)
	return w
}
