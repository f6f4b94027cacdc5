// Package tui draws the canvas in a terminal with truecolor half blocks and
// reads keys in raw mode.
package tui

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/leonelquinteros/gotext"

	"pixelbattle/pkg/engine/input"
	"pixelbattle/pkg/engine/terminal"
	"pixelbattle/pkg/game/app"
	"pixelbattle/pkg/game/renderer"
	"pixelbattle/pkg/game/state"
	"pixelbattle/pkg/game/viewport"
)

// dynamicGet translates runtime strings such as status names, keeping vet's
// constant format string check quiet.
var dynamicGet = gotext.Get

// hudRows are the terminal lines below the canvas.
const hudRows = 4

const frameInterval = 33 * time.Millisecond

const (
	clearScreen = "\x1b[2J"
	cursorHome  = "\x1b[H"
	clearLine   = "\x1b[K"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
)

// TUIRenderer is the terminal backend.
type TUIRenderer struct {
	app      *app.Coordinator
	messages *renderer.Messages
	surface  *Surface
	out      io.Writer
	in       io.Reader
	restore  func()

	cols, rows int
	size       func() (cols, rows int)
	lastHUD    []string

	console     bool
	consoleLine input.LineEditor
	consoleOut  string

	colorConnected  color.Style
	colorConnecting color.Style
	colorOffline    color.Style
	colorFailed     color.Style
	colorSubtle     color.Style
	colorAction     color.Style
	colorDenied     color.Style
	colorBanner     color.Style
}

// New creates a terminal backend on stdin and stdout.
func New() *TUIRenderer {
	t := &TUIRenderer{
		messages: renderer.NewMessages(time.Now),
		out:      os.Stdout,
		in:       os.Stdin,
		size:     terminal.GetSize,
	}
	t.cols, t.rows = t.size()
	w, h := terminal.CanvasSize(t.cols, t.rows, hudRows)
	t.surface = NewSurface(w, h)
	return t
}

// Init switches the terminal to raw mode and sets up the color styles.
func (t *TUIRenderer) Init() error {
	if !terminal.IsTerminal() {
		return fmt.Errorf("the tui renderer needs a terminal on stdout")
	}
	restore, err := input.MakeRaw()
	if err != nil {
		return err
	}
	t.restore = restore
	color.ForceColor()
	t.initStyles()
	return nil
}

func (t *TUIRenderer) initStyles() {
	t.colorConnected = color.Style{color.FgGreen, color.OpBold}
	t.colorConnecting = color.Style{color.FgYellow, color.OpBold}
	t.colorOffline = color.Style{color.FgGray}
	t.colorFailed = color.Style{color.FgRed, color.OpBold}
	t.colorSubtle = color.Style{color.FgGray}
	t.colorAction = color.Style{color.FgMagenta, color.OpBold}
	t.colorDenied = color.Style{color.FgRed, color.OpBold}
	t.colorBanner = color.Style{color.FgWhite, color.BgRed, color.OpBold}
}

// Container reports the canvas area in half-block units.
func (t *TUIRenderer) Container() viewport.Container {
	return viewport.ContainerFunc(func() (float64, float64) {
		w, h := terminal.CanvasSize(t.cols, t.rows, hudRows)
		return float64(w), float64(h)
	})
}

// Notifier returns the message queue shown in the status lines.
func (t *TUIRenderer) Notifier() app.Notifier {
	return t.messages
}

// Attach connects the backend to the client and reports the initial size.
func (t *TUIRenderer) Attach(c *app.Coordinator) {
	t.app = c
	w, h := t.Container().Size()
	c.Resize(w, h, 1)
}

// Run reads keys and redraws until the user quits.
func (t *TUIRenderer) Run() error {
	defer t.shutdown()
	fmt.Fprint(t.out, hideCursor+clearScreen)

	keys := make(chan string, 16)
	go t.readKeys(keys)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case code, ok := <-keys:
			if !ok {
				return nil
			}
			if !t.handleKey(code) {
				return nil
			}
		case <-t.app.Loop().Wake():
		case <-ticker.C:
		}
		t.app.Update()
		if err := t.frame(); err != nil {
			return err
		}
	}
}

func (t *TUIRenderer) shutdown() {
	fmt.Fprint(t.out, showCursor+"\r\n")
	if t.restore != nil {
		t.restore()
	}
}

func (t *TUIRenderer) readKeys(keys chan<- string) {
	defer close(keys)
	r := input.NewKeyReader(t.in)
	for {
		code, err := r.ReadKey()
		if err != nil {
			if err != io.EOF {
				log.Printf("Cannot read stdin: %v", err)
			}
			return
		}
		if code != "" {
			keys <- code
		}
	}
}

// handleKey applies one key code and returns false to quit.
func (t *TUIRenderer) handleKey(code string) bool {
	if t.console {
		line, done, cancelled := t.consoleLine.Feed(code)
		switch {
		case cancelled:
			t.console = false
		case done:
			t.console = false
			out, err := renderer.Execute(t.app, line)
			if err != nil {
				out = err.Error()
			}
			t.consoleOut = firstLine(out)
		}
		return true
	}

	action := input.Resolve(input.DeviceTerminal, code)
	if action == input.ActionConsole {
		t.console = true
		t.consoleOut = ""
		return true
	}
	return renderer.Dispatch(t.app, action)
}

// frame follows terminal resizes, paints if the canvas changed and rewrites
// the status lines if they changed.
func (t *TUIRenderer) frame() error {
	if cols, rows := t.size(); cols != t.cols || rows != t.rows {
		t.cols, t.rows = cols, rows
		w, h := t.Container().Size()
		t.app.Resize(w, h, 1)
		t.lastHUD = nil
		fmt.Fprint(t.out, clearScreen)
	}

	painted, err := t.app.Draw(t.surface)
	if err != nil {
		return err
	}
	hud := t.hud()
	if !painted && slices.Equal(hud, t.lastHUD) {
		return nil
	}

	w := bufio.NewWriter(t.out)
	w.WriteString(cursorHome)
	for _, line := range t.surface.Lines() {
		w.WriteString(line)
		w.WriteString("\r\n")
	}
	for i, line := range hud {
		w.WriteString(line)
		w.WriteString(clearLine)
		if i < len(hud)-1 {
			w.WriteString("\r\n")
		}
	}
	t.lastHUD = hud
	return w.Flush()
}

// hud returns the status lines under the canvas.
func (t *TUIRenderer) hud() []string {
	s := t.app.Store()
	lines := make([]string, 0, hudRows)

	// Connection
	status := state.Status(s)
	var style color.Style
	switch status {
	case "connected":
		style = t.colorConnected
	case "connecting":
		style = t.colorConnecting
	case "failed":
		style = t.colorFailed
	default:
		style = t.colorOffline
	}
	conn := style.Sprint("● " + dynamicGet(status))
	if n := state.ReconnectAttempts(s); n > 0 && status != "connected" {
		conn += t.colorSubtle.Sprint(gotext.Get(" (attempt %d)", n))
	}
	lines = append(lines, fmt.Sprintf("%s  %s  %s  %s",
		conn,
		gotext.Get("%d online", state.OnlineUsers(s)),
		gotext.Get("ping %dms", state.Latency(s).Milliseconds()),
		t.colorSubtle.Sprintf("x%.2f", state.Scale(s)),
	))

	// Selection, color and cooldown
	selected := gotext.Get("no pixel selected")
	if cell, ok := state.Selected(s); ok {
		selected = gotext.Get("pixel %d,%d", cell.X, cell.Y)
	}
	hex := state.SelectedColor(s)
	swatch := hex
	if c, err := state.ParseHex(hex); err == nil {
		swatch = color.RGB(c.R, c.G, c.B).Sprint("██") + " " + hex
	}
	ready := t.colorConnected.Sprint(gotext.Get("ready"))
	if active, remaining := state.Cooldown(s); active {
		ready = t.colorDenied.Sprint(gotext.Get("wait %ds", remaining))
	}
	line := fmt.Sprintf("%s  %s  %s", selected, swatch, ready)
	if state.SidebarOpen(s) {
		line += "  " + t.palette(hex)
	}
	lines = append(lines, line)

	// Notifications
	switch banner := t.messages.Banner(); {
	case banner != "":
		lines = append(lines, t.colorBanner.Sprint(" "+banner+" "))
	default:
		toasts := t.messages.Visible()
		if len(toasts) == 0 {
			lines = append(lines, "")
			break
		}
		last := toasts[len(toasts)-1]
		msg := last.Text
		if last.Level == app.LevelError || last.Level == app.LevelWarning {
			msg = t.colorDenied.Sprint(msg)
		}
		lines = append(lines, msg)
	}

	// Console or key hints
	if t.console {
		lines = append(lines, t.colorAction.Sprint(":")+t.consoleLine.Text()+"█")
	} else if t.consoleOut != "" {
		lines = append(lines, t.colorSubtle.Sprint(t.consoleOut))
	} else {
		lines = append(lines, t.colorSubtle.Sprint(gotext.Get(
			"arrows pan  +/- zoom  hjkl select  enter place  [ ] color  : console  q quit")))
	}
	return lines
}

// palette renders the swatches, marking the selected color.
func (t *TUIRenderer) palette(selected string) string {
	var b strings.Builder
	for _, hex := range t.app.Palette() {
		c, err := state.ParseHex(hex)
		if err != nil {
			continue
		}
		mark := "  "
		if strings.EqualFold(hex, selected) {
			mark = "[]"
		}
		b.WriteString(color.NewRGBStyle(color.RGB(0, 0, 0), color.RGB(c.R, c.G, c.B, true)).Sprint(mark))
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
