package ebiten

import (
	"bytes"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// loadFonts parses the bundled Go fonts.
func (e *EbitenRenderer) loadFonts() error {
	var err error
	if e.sansFontSource, err = text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF)); err != nil {
		return fmt.Errorf("loading sans font: %w", err)
	}
	if e.sansBoldFontSource, err = text.NewGoTextFaceSource(bytes.NewReader(gobold.TTF)); err != nil {
		return fmt.Errorf("loading bold font: %w", err)
	}
	if e.monoFontSource, err = text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF)); err != nil {
		return fmt.Errorf("loading mono font: %w", err)
	}
	return nil
}

// getUIFontSize returns the UI font size in device pixels
func (e *EbitenRenderer) getUIFontSize() float64 {
	return baseFontSize * e.dpr
}

// faces rebuilds the cached faces when the scale factor changed
func (e *EbitenRenderer) faces() {
	if e.cachedSansFace != nil && e.cachedFaceScale == e.dpr {
		return
	}
	size := e.getUIFontSize()
	e.cachedFaceScale = e.dpr
	e.cachedSansFace = &text.GoTextFace{Source: e.sansFontSource, Size: size}
	e.cachedBoldFace = &text.GoTextFace{Source: e.sansBoldFontSource, Size: size}
	e.cachedMonoFace = &text.GoTextFace{Source: e.monoFontSource, Size: size}
}

// getSansFontFace returns a cached sans-serif font face for UI text
func (e *EbitenRenderer) getSansFontFace() *text.GoTextFace {
	e.faces()
	return e.cachedSansFace
}

// getSansBoldFontFace returns a cached sans-serif bold font face (same size as UI)
func (e *EbitenRenderer) getSansBoldFontFace() *text.GoTextFace {
	e.faces()
	return e.cachedBoldFace
}

// getMonoFontFace returns a monospace font face with UI font size (for console)
func (e *EbitenRenderer) getMonoFontFace() *text.GoTextFace {
	e.faces()
	return e.cachedMonoFace
}
