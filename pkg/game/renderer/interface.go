// Package renderer holds what the display backends share: the backend
// contract, the mapping from input actions to client commands, the
// notification queue and the command console.
package renderer

import (
	"log"

	"pixelbattle/pkg/engine/input"
	"pixelbattle/pkg/game/app"
	"pixelbattle/pkg/game/viewport"
)

// Backend is a display and input implementation, such as a window or a
// terminal. The backend is built before the Coordinator, which needs its container and
// notifier, and is attached to it afterwards.
type Backend interface {
	// Init prepares fonts, windows or terminal modes. Failures are fatal.
	Init() error

	// Container measures the area the canvas is drawn in.
	Container() viewport.Container

	// Notifier returns where the backend shows notifications.
	Notifier() app.Notifier

	// Attach connects the backend to the running client.
	Attach(c *app.Coordinator)

	// Run blocks until the user quits.
	Run() error
}

var viewportActions = map[input.Action]viewport.Action{
	input.ActionPanUp:         viewport.ActionPanUp,
	input.ActionPanDown:       viewport.ActionPanDown,
	input.ActionPanLeft:       viewport.ActionPanLeft,
	input.ActionPanRight:      viewport.ActionPanRight,
	input.ActionZoomIn:        viewport.ActionZoomIn,
	input.ActionZoomOut:       viewport.ActionZoomOut,
	input.ActionZoomReset:     viewport.ActionZoomReset,
	input.ActionCenter:        viewport.ActionCenter,
	input.ActionToggleSidebar: viewport.ActionToggleSidebar,
}

// Dispatch runs the client command bound to a. It returns false when the
// user asked to quit. ActionConsole is left to the backend.
func Dispatch(c *app.Coordinator, a input.Action) bool {
	if va, ok := viewportActions[a]; ok {
		c.Controller().Action(va)
		return true
	}

	ctl := c.Controller()
	switch a {
	case input.ActionCursorUp:
		ctl.MoveSelection(0, -1)
	case input.ActionCursorDown:
		ctl.MoveSelection(0, 1)
	case input.ActionCursorLeft:
		ctl.MoveSelection(-1, 0)
	case input.ActionCursorRight:
		ctl.MoveSelection(1, 0)
	case input.ActionConfirm:
		c.ConfirmPlacement()
	case input.ActionNextColor:
		c.NextColor()
	case input.ActionPrevColor:
		c.PrevColor()
	case input.ActionCopyCoordinates:
		c.CopySelected()
	case input.ActionScreenshot:
		if _, err := c.Screenshot(); err != nil {
			log.Printf("Screenshot failed: %v", err)
		}
	case input.ActionStats:
		c.RequestStats()
	case input.ActionReconnect:
		c.Reconnect()
	case input.ActionQuit:
		return false
	}
	return true
}
