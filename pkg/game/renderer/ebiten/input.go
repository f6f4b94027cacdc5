package ebiten

import (
	"fmt"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"pixelbattle/pkg/engine/input"
	"pixelbattle/pkg/game/renderer"
	"pixelbattle/pkg/game/viewport"
)

// keyCode pairs an Ebiten key with the code the bindings use. Held keys with
// repeat set fire again after the repeat delay.
type keyCode struct {
	key    ebiten.Key
	code   string
	repeat bool
}

var keyCodes = []keyCode{
	// Panning
	{ebiten.KeyArrowUp, "arrow_up", true},
	{ebiten.KeyArrowDown, "arrow_down", true},
	{ebiten.KeyArrowLeft, "arrow_left", true},
	{ebiten.KeyArrowRight, "arrow_right", true},
	{ebiten.KeyW, "w", true},
	{ebiten.KeyA, "a", true},
	{ebiten.KeyS, "s", true},
	{ebiten.KeyD, "d", true},

	// Zoom
	{ebiten.KeyEqual, "=", true},
	{ebiten.KeyNumpadAdd, "numpad_add", true},
	{ebiten.KeyMinus, "-", true},
	{ebiten.KeyNumpadSubtract, "numpad_subtract", true},
	{ebiten.Key0, "0", false},
	{ebiten.KeyNumpad0, "0", false},
	{ebiten.KeyC, "c", false},

	// Selection cursor
	{ebiten.KeyK, "k", true},
	{ebiten.KeyJ, "j", true},
	{ebiten.KeyH, "h", true},
	{ebiten.KeyL, "l", true},

	// Placement
	{ebiten.KeyEnter, "enter", false},
	{ebiten.KeyNumpadEnter, "enter", false},
	{ebiten.KeySpace, "space", false},
	{ebiten.KeyBracketRight, "]", true},
	{ebiten.KeyBracketLeft, "[", true},

	// Meta
	{ebiten.KeyTab, "tab", false},
	{ebiten.KeyY, "y", false},
	{ebiten.KeyP, "p", false},
	{ebiten.KeyF12, "screenshot", false},
	{ebiten.KeyI, "i", false},
	{ebiten.KeyR, "r", false},
	{ebiten.KeyGraveAccent, "`", false},
	{ebiten.KeyQ, "q", false},
	{ebiten.KeyEscape, "escape", false},
}

// Update handles input and drains the client's event queue (Ebiten interface)
func (e *EbitenRenderer) Update() error {
	// Log window opening on first update (confirms window is actually running)
	if !e.windowOpenedLogged {
		e.windowOpenedLogged = true
		w, h := ebiten.WindowSize()
		log.Printf("Main window opened successfully (%dx%d)", w, h)
	}
	if e.drawErr != nil {
		return e.drawErr
	}

	e.app.Update()

	if e.IsConsoleActive() {
		e.handleConsoleInput()
	} else {
		e.handleKeys()
		e.handleGamepad()
	}
	e.handleMouse()
	e.handleWheel()
	e.handleTouch()

	// Sidebar toggles move the canvas edge
	e.syncLayout()

	if e.quit {
		return ebiten.Termination
	}
	return nil
}

// trigger resolves a key code and runs its command.
func (e *EbitenRenderer) trigger(device input.Device, code string) {
	action := input.Resolve(device, code)
	switch action {
	case input.ActionNone:
	case input.ActionConsole:
		e.ToggleConsole()
	default:
		if !renderer.Dispatch(e.app, action) {
			e.quit = true
		}
	}
}

// handleKeys checks the bound keyboard keys.
func (e *EbitenRenderer) handleKeys() {
	// Shift+; produces a colon on most layouts
	if inpututil.IsKeyJustPressed(ebiten.KeySemicolon) && ebiten.IsKeyPressed(ebiten.KeyShift) {
		e.trigger(input.DeviceKeyboard, ":")
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) && ebiten.IsKeyPressed(ebiten.KeyControl) {
		e.trigger(input.DeviceKeyboard, "ctrl_c")
		return
	}
	for _, k := range keyCodes {
		var fire bool
		if k.repeat {
			key := k.key
			fire = e.shouldRepeatKey(func() bool { return ebiten.IsKeyPressed(key) }, "key_"+k.code)
		} else {
			fire = inpututil.IsKeyJustPressed(k.key)
		}
		if fire {
			e.trigger(input.DeviceKeyboard, k.code)
		}
	}
}

// shouldRepeatKey checks if a key/button should trigger (initial press or repeat)
// Returns true if the key should trigger, false otherwise
func (e *EbitenRenderer) shouldRepeatKey(isPressed func() bool, code string) bool {
	now := time.Now().UnixMilli()

	pressed := isPressed()
	state, exists := e.keyRepeatState[code]

	if !pressed {
		// Key released - clean up state
		delete(e.keyRepeatState, code)
		return false
	}
	if !exists {
		// First press - record it and trigger immediately
		e.keyRepeatState[code] = keyRepeatInfo{firstPressed: now, lastRepeat: now}
		return true
	}

	// Key is held - repeat once the initial delay has passed
	if now-state.firstPressed >= keyRepeatInitialDelay && now-state.lastRepeat >= keyRepeatInterval {
		state.lastRepeat = now
		e.keyRepeatState[code] = state
		return true
	}
	return false
}

// handleGamepad checks controller input.
// NOTE: Button indices here are tuned for common XInput-style controllers on Linux;
// mappings may vary between devices/platforms.
func (e *EbitenRenderer) handleGamepad() {
	var ids []ebiten.GamepadID
	ids = ebiten.AppendGamepadIDs(ids)

	for _, id := range ids {
		// Left stick moves the selection cursor
		const deadZone = 0.5
		stickX := ebiten.GamepadAxisValue(id, 0)
		stickY := ebiten.GamepadAxisValue(id, 1)

		sticks := []struct {
			active bool
			code   string
		}{
			{stickX < -deadZone, "gamepad_dpad_left"},
			{stickX > deadZone, "gamepad_dpad_right"},
			{stickY < -deadZone, "gamepad_dpad_up"},
			{stickY > deadZone, "gamepad_dpad_down"},
		}
		for _, s := range sticks {
			active := s.active
			if e.shouldRepeatKey(func() bool { return active }, fmt.Sprintf("gamepad_%d_%s_stick", id, s.code)) {
				e.trigger(input.DeviceGamepad, s.code)
			}
		}

		// D-pad: up 11, right 12, down 13, left 14
		dpad := []struct {
			button ebiten.GamepadButton
			code   string
		}{
			{ebiten.GamepadButton11, "gamepad_dpad_up"},
			{ebiten.GamepadButton12, "gamepad_dpad_right"},
			{ebiten.GamepadButton13, "gamepad_dpad_down"},
			{ebiten.GamepadButton14, "gamepad_dpad_left"},
		}
		for _, d := range dpad {
			button := d.button
			if e.shouldRepeatKey(func() bool { return ebiten.IsGamepadButtonPressed(id, button) }, fmt.Sprintf("gamepad_%d_%d", id, button)) {
				e.trigger(input.DeviceGamepad, d.code)
			}
		}

		// A places, bumpers cycle colors, Start toggles the palette
		buttons := []struct {
			button ebiten.GamepadButton
			code   string
		}{
			{ebiten.GamepadButton0, "gamepad_a"},
			{ebiten.GamepadButton4, "gamepad_lb"},
			{ebiten.GamepadButton5, "gamepad_rb"},
			{ebiten.GamepadButton7, "gamepad_start"},
		}
		for _, b := range buttons {
			if inpututil.IsGamepadButtonJustPressed(id, b.button) {
				e.trigger(input.DeviceGamepad, b.code)
			}
		}
	}
}

// cursor returns the mouse position in logical window units.
func (e *EbitenRenderer) cursor() viewport.Point {
	x, y := ebiten.CursorPosition()
	return viewport.Point{X: float64(x) / e.dpr, Y: float64(y) / e.dpr}
}

// handleMouse forwards presses inside the canvas to the viewport controller
// and handles clicks on the sidebar.
func (e *EbitenRenderer) handleMouse() {
	l := e.layout()
	p := e.cursor()
	ctl := e.app.Controller()

	for _, mb := range []struct {
		target viewport.Button
		button ebiten.MouseButton
	}{
		{viewport.ButtonPrimary, ebiten.MouseButtonLeft},
		{viewport.ButtonSecondary, ebiten.MouseButtonRight},
		{viewport.ButtonSecondary, ebiten.MouseButtonMiddle},
	} {
		if !inpututil.IsMouseButtonJustPressed(mb.button) || e.mouseDown {
			continue
		}
		if mb.target == viewport.ButtonPrimary && e.clickSidebar(l, p) {
			continue
		}
		if !l.canvas().contains(p) {
			continue
		}
		e.mouseDown = true
		e.pressedButton = mb.target
		e.lastCursor = p
		ctl.PointerDown(mb.target, l.toCanvas(p))
	}

	if !e.mouseDown {
		return
	}
	if p != e.lastCursor {
		e.lastCursor = p
		ctl.PointerMove(l.toCanvas(p))
	}
	released := inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
	if e.pressedButton == viewport.ButtonSecondary {
		released = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight) ||
			inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonMiddle)
	}
	if released {
		e.mouseDown = false
		ctl.PointerUp(e.pressedButton, l.toCanvas(p))
	}
}

// clickSidebar handles a primary click on a swatch or the place button and
// reports whether p was on the sidebar.
func (e *EbitenRenderer) clickSidebar(l layout, p viewport.Point) bool {
	if !l.sidebar().contains(p) {
		return false
	}
	if i := l.swatchAt(p); i >= 0 {
		e.app.SelectColor(e.app.Palette()[i])
	} else if l.placeButton().contains(p) {
		e.app.ConfirmPlacement()
	}
	return true
}

// handleWheel zooms about the cursor.
func (e *EbitenRenderer) handleWheel() {
	_, dy := ebiten.Wheel()
	if dy == 0 {
		return
	}
	l := e.layout()
	p := e.cursor()
	if l.canvas().contains(p) {
		e.app.Controller().Wheel(l.toCanvas(p), dy)
	}
}

// handleTouch forwards touch starts, moves and ends to the controller.
func (e *EbitenRenderer) handleTouch() {
	l := e.layout()
	ctl := e.app.Controller()
	point := func(id ebiten.TouchID) viewport.Point {
		x, y := ebiten.TouchPosition(id)
		return viewport.Point{X: float64(x) / e.dpr, Y: float64(y) / e.dpr}
	}

	for _, id := range inpututil.AppendJustReleasedTouchIDs(nil) {
		if _, ok := e.touches[id]; ok {
			delete(e.touches, id)
			ctl.TouchEnd(int(id))
		}
	}
	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		p := point(id)
		if l.sidebar().contains(p) {
			e.clickSidebar(l, p)
			continue
		}
		if !l.canvas().contains(p) {
			continue
		}
		e.touches[id] = p
		ctl.TouchStart(int(id), l.toCanvas(p))
	}
	for _, id := range ebiten.AppendTouchIDs(nil) {
		last, ok := e.touches[id]
		if !ok {
			continue
		}
		if p := point(id); p != last {
			e.touches[id] = p
			ctl.TouchMove(int(id), l.toCanvas(p))
		}
	}
}

// Layout is required by ebiten.Game; LayoutF takes precedence.
func (e *EbitenRenderer) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := e.LayoutF(float64(outsideWidth), float64(outsideHeight))
	return int(w), int(h)
}

// LayoutF makes the screen image device-pixel sized so the canvas stays
// sharp on high density displays.
func (e *EbitenRenderer) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	dpr := 1.0
	if m := ebiten.Monitor(); m != nil {
		dpr = m.DeviceScaleFactor()
	}
	if outsideWidth != e.windowWidth || outsideHeight != e.windowHeight || dpr != e.dpr {
		e.windowWidth, e.windowHeight, e.dpr = outsideWidth, outsideHeight, dpr
		e.syncLayout()
	}
	return outsideWidth * dpr, outsideHeight * dpr
}
