package ebiten

import (
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/leonelquinteros/gotext"

	"pixelbattle/pkg/game/renderer"
)

// ToggleConsole opens or closes the console overlay with a short slide.
func (e *EbitenRenderer) ToggleConsole() {
	e.consoleActive = !e.consoleActive
	e.consoleAnimating = true
	e.consoleAnimStartTime = time.Now().UnixMilli()
	e.consoleLine.Reset()
	if e.consoleActive && len(e.consoleOutput) == 0 {
		e.addConsoleOutput(gotext.Get("Type help for a list of commands."))
	}
}

// IsConsoleActive reports whether keys go to the console.
func (e *EbitenRenderer) IsConsoleActive() bool {
	return e.consoleActive
}

// handleConsoleInput feeds typed characters and editing keys to the line.
func (e *EbitenRenderer) handleConsoleInput() {
	codes := make([]string, 0, 4)
	for _, r := range ebiten.AppendInputChars(nil) {
		if r == ' ' {
			codes = append(codes, "space")
		} else if r != '`' {
			codes = append(codes, string(r))
		}
	}
	if e.shouldRepeatKey(func() bool { return ebiten.IsKeyPressed(ebiten.KeyBackspace) }, "console_backspace") {
		codes = append(codes, "backspace")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter) {
		codes = append(codes, "enter")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyGraveAccent) {
		e.ToggleConsole()
		return
	}

	for _, code := range codes {
		line, done, _ := e.consoleLine.Feed(code)
		if !done {
			continue
		}
		e.executeCommand(line)
	}
}

// executeCommand echoes a line and runs it.
func (e *EbitenRenderer) executeCommand(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	e.addConsoleOutput("> " + line)
	out, err := renderer.Execute(e.app, line)
	if err != nil {
		out = err.Error()
	}
	for _, l := range strings.Split(out, "\n") {
		if l != "" {
			e.addConsoleOutput(l)
		}
	}
}

func (e *EbitenRenderer) addConsoleOutput(line string) {
	e.consoleOutput = append(e.consoleOutput, line)
	if over := len(e.consoleOutput) - maxConsoleOutput; over > 0 {
		e.consoleOutput = e.consoleOutput[over:]
	}
}

// consoleProgress advances the open/close animation.
func (e *EbitenRenderer) consoleProgress() float64 {
	if !e.consoleAnimating {
		return e.consoleAnimProgress
	}
	elapsed := time.Now().UnixMilli() - e.consoleAnimStartTime
	if elapsed >= consoleAnimDuration {
		e.consoleAnimating = false
		e.consoleAnimProgress = 0
		if e.consoleActive {
			e.consoleAnimProgress = 1
		}
		return e.consoleAnimProgress
	}
	eased := easeInOut(float64(elapsed) / consoleAnimDuration)
	if e.consoleActive {
		e.consoleAnimProgress = eased
	} else {
		e.consoleAnimProgress = 1 - eased
	}
	return e.consoleAnimProgress
}

// drawConsole draws the console over the bottom 40% of the window.
func (e *EbitenRenderer) drawConsole(screen *ebiten.Image) {
	progress := e.consoleProgress()
	if progress <= 0 {
		return
	}

	screenWidth, screenHeight := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	consoleHeight := screenHeight * 0.4 * progress
	consoleY := screenHeight - consoleHeight

	bgColor := color.RGBA{0, 0, 0, uint8(220 * progress)}
	vector.DrawFilledRect(screen, 0, float32(consoleY), float32(screenWidth), float32(consoleHeight), bgColor, false)
	borderColor := color.RGBA{100, 100, 150, uint8(255 * progress)}
	vector.DrawFilledRect(screen, 0, float32(consoleY), float32(screenWidth), float32(2*e.dpr), borderColor, false)

	face := e.getMonoFontFace()
	fontSize := e.getUIFontSize()
	lineHeight := fontSize + 6*e.dpr
	padding := 10 * e.dpr
	if consoleHeight < lineHeight*2 {
		return
	}

	// Output lines above the input line, most recent last
	inputY := consoleY + consoleHeight - padding - lineHeight
	fits := int((inputY - consoleY - padding) / lineHeight)
	start := max(len(e.consoleOutput)-fits, 0)
	y := consoleY + padding
	for _, line := range e.consoleOutput[start:] {
		e.drawColoredTextWithFace(screen, line, padding, y, color.RGBA{200, 200, 200, uint8(255 * progress)}, face)
		y += lineHeight
	}

	// Input line with a blinking cursor
	cursor := "_"
	if time.Now().UnixMilli()/500%2 == 0 {
		cursor = " "
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(padding, inputY)
	op.ColorScale.ScaleWithColor(color.RGBA{255, 255, 255, uint8(255 * progress)})
	text.Draw(screen, "> "+e.consoleLine.Text()+cursor, face, op)
}
