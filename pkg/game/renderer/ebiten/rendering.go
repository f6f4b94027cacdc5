package ebiten

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/leonelquinteros/gotext"

	"pixelbattle/pkg/engine/store"
	"pixelbattle/pkg/game/app"
	"pixelbattle/pkg/game/state"
)

// Draw renders the window (Ebiten interface). The canvas is repainted into
// its offscreen image only when the engine has something new; the chrome is
// cheap and drawn every frame.
func (e *EbitenRenderer) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	if e.app == nil || e.sansFontSource == nil {
		return
	}

	if _, err := e.app.Draw(e.canvas); err != nil {
		e.drawErr = err
		return
	}

	l := e.layout()
	s := e.app.Store()
	now := time.Now()

	// Canvas under everything else
	if img := e.canvas.Image(); img != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(0, l.canvas().y*e.dpr)
		screen.DrawImage(img, op)
	}

	e.drawHeader(screen, l, s, now)
	if l.sidebarOpen {
		e.drawSidebar(screen, l, s)
	}
	e.drawBanner(screen, l)
	e.drawMessages(screen, l)

	// Draw console overlay (always on top)
	e.drawConsole(screen)
}

// fillRect fills a logical rect on the device-pixel screen.
func (e *EbitenRenderer) fillRect(screen *ebiten.Image, r rect, c color.Color) {
	vector.DrawFilledRect(screen, float32(r.x*e.dpr), float32(r.y*e.dpr), float32(r.w*e.dpr), float32(r.h*e.dpr), c, false)
}

// strokeRect outlines a logical rect with a width in logical units.
func (e *EbitenRenderer) strokeRect(screen *ebiten.Image, r rect, width float64, c color.Color) {
	vector.StrokeRect(screen, float32(r.x*e.dpr), float32(r.y*e.dpr), float32(r.w*e.dpr), float32(r.h*e.dpr), float32(width*e.dpr), c, false)
}

// drawText draws str at a logical position.
func (e *EbitenRenderer) drawText(screen *ebiten.Image, str string, x, y float64, c color.Color) {
	e.drawColoredText(screen, str, x*e.dpr, y*e.dpr, c)
}

// drawHeader draws the status strip: connection state, online users,
// latency and zoom on the left, cooldown on the right.
func (e *EbitenRenderer) drawHeader(screen *ebiten.Image, l layout, s *store.Store, now time.Time) {
	h := l.headerHeight()
	e.fillRect(screen, rect{0, 0, l.width, h}, colorHeader)
	e.fillRect(screen, rect{0, h - 1, l.width, 1}, colorPanelBorder)

	textY := (h - baseFontSize) / 2
	x := panelMargin

	// Connection dot
	status := state.Status(s)
	dot := baseFontSize * 0.6
	vector.DrawFilledCircle(screen, float32((x+dot/2)*e.dpr), float32(h/2*e.dpr), float32(dot/2*e.dpr), statusColor(status, now), true)
	x += dot + 8

	label := dynamicGet(status)
	if n := state.ReconnectAttempts(s); n > 0 && status != "connected" {
		label += gotext.Get(" (attempt %d)", n)
	}
	e.drawText(screen, label, x, textY, colorText)
	x += e.getTextWidth(label)/e.dpr + panelMargin

	for _, part := range []string{
		gotext.Get("%d online", state.OnlineUsers(s)),
		gotext.Get("ping %dms", state.Latency(s).Milliseconds()),
		fmt.Sprintf("%.0f%%", state.Scale(s)*100),
		fmt.Sprintf("%.0f fps", store.ValueOr(s, state.PathFPS, 0.0)),
	} {
		e.drawText(screen, part, x, textY, colorSubtle)
		x += e.getTextWidth(part)/e.dpr + panelMargin
	}

	// Right-aligned placement readiness
	ready, col := gotext.Get("Ready to place"), colorSuccess
	if active, remaining := state.Cooldown(s); active {
		ready, col = gotext.Get("Cooldown %ds", remaining), colorWarning
	}
	w := e.getTextWidth(ready) / e.dpr
	e.drawText(screen, ready, l.width-panelMargin-w, textY, col)
}

// drawSidebar draws the palette, the place button and the selection details.
func (e *EbitenRenderer) drawSidebar(screen *ebiten.Image, l layout, s *store.Store) {
	sb := l.sidebar()
	e.fillRect(screen, sb, colorPanelBackground)
	e.fillRect(screen, rect{sb.x, sb.y, 1, sb.h}, colorPanelBorder)

	e.drawColoredTextWithFace(screen, gotext.Get("Colors"), (sb.x+sidebarPadding)*e.dpr, (sb.y+sidebarPadding)*e.dpr, colorAction, e.getSansBoldFontFace())

	selected := state.SelectedColor(s)
	for i, hex := range e.app.Palette() {
		c, err := state.ParseHex(hex)
		if err != nil {
			continue
		}
		r := l.swatch(i)
		e.fillRect(screen, r, c)
		if strings.EqualFold(hex, selected) {
			e.strokeRect(screen, rect{r.x - 3, r.y - 3, r.w + 6, r.h + 6}, 2, colorSwatchSelected)
		} else {
			e.strokeRect(screen, r, 1, colorPanelBorder)
		}
	}

	// Place button, disabled while cooling down or offline
	b := l.placeButton()
	label, bg := gotext.Get("Place pixel"), colorButton
	_, hasSelection := state.Selected(s)
	if active, remaining := state.Cooldown(s); active {
		label, bg = gotext.Get("Wait %ds", remaining), colorButtonDisabled
	} else if !state.Connected(s) || !hasSelection {
		bg = colorButtonDisabled
	}
	e.fillRect(screen, b, bg)
	w := e.getTextWidth(label) / e.dpr
	e.drawText(screen, label, b.x+(b.w-w)/2, b.y+(b.h-baseFontSize)/2, colorText)

	// Selection details
	y := l.infoTop()
	pixel := gotext.Get("No pixel selected")
	if cell, ok := state.Selected(s); ok {
		pixel = gotext.Get("Pixel %d, %d", cell.X, cell.Y)
	}
	lineHeight := baseFontSize + 6
	e.drawText(screen, pixel, sb.x+sidebarPadding, y, colorText)
	e.drawText(screen, gotext.Get("Color %s", selected), sb.x+sidebarPadding, y+lineHeight, colorSubtle)
}

// drawBanner draws the persistent message across the top of the canvas.
func (e *EbitenRenderer) drawBanner(screen *ebiten.Image, l layout) {
	msg := e.messages.Banner()
	if msg == "" {
		return
	}
	c := l.canvas()
	h := baseFontSize + 16
	e.fillRect(screen, rect{c.x, c.y, c.w, h}, colorBanner)
	w := e.getTextWidth(msg) / e.dpr
	e.drawText(screen, msg, c.x+(c.w-w)/2, c.y+8, colorText)
}

// levelColor maps a notification level to its text color.
func levelColor(level app.Level) color.RGBA {
	switch level {
	case app.LevelSuccess:
		return colorSuccess
	case app.LevelWarning:
		return colorWarning
	case app.LevelError:
		return colorDenied
	default:
		return colorText
	}
}

// drawMessages draws the toasts as a bottom-aligned panel over the canvas.
// The panel is only drawn while a toast is visible.
func (e *EbitenRenderer) drawMessages(screen *ebiten.Image, l layout) {
	toasts := e.messages.Visible()
	if len(toasts) == 0 {
		return
	}

	lineHeight := baseFontSize + 4
	maxTextWidth := 0.0
	for _, t := range toasts {
		maxTextWidth = max(maxTextWidth, e.getTextWidth(t.Text)/e.dpr)
	}

	c := l.canvas()
	panelWidth := min(max(maxTextWidth+20, 100), c.w-40)
	panelHeight := float64(len(toasts))*lineHeight + 12
	panel := rect{
		x: c.x + (c.w-panelWidth)/2,
		y: max(c.y+c.h-panelMargin-panelHeight, c.y),
		w: panelWidth,
		h: panelHeight,
	}

	// Panel fades with the newest toast
	alpha := toasts[len(toasts)-1].Alpha
	e.fillRect(screen, rect{panel.x - 1, panel.y - 1, panel.w + 2, panel.h + 2}, applyAlpha(colorPanelBorder, alpha))
	e.fillRect(screen, panel, applyAlpha(colorPanelBackground, alpha))

	for i, t := range toasts {
		y := panel.y + 6 + float64(i)*lineHeight
		e.drawText(screen, t.Text, panel.x+10, y, applyAlpha(levelColor(t.Level), t.Alpha))
	}
}
