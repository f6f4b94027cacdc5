package input

import (
	"sort"
	"strings"
	"time"
)

// Device represents a physical input source.
type Device int

const (
	DeviceUnknown Device = iota
	DeviceKeyboard
	DeviceGamepad
	DeviceTerminal
)

// Action represents a high‑level intent of the user.
type Action int

const (
	ActionNone Action = iota

	// Viewport
	ActionPanUp
	ActionPanDown
	ActionPanLeft
	ActionPanRight
	ActionZoomIn
	ActionZoomOut
	ActionZoomReset
	ActionCenter

	// Selection cursor, for devices without a pointer
	ActionCursorUp
	ActionCursorDown
	ActionCursorLeft
	ActionCursorRight

	// Placement
	ActionConfirm
	ActionNextColor
	ActionPrevColor

	// Meta / UI
	ActionToggleSidebar
	ActionCopyCoordinates
	ActionScreenshot
	ActionStats
	ActionReconnect
	ActionConsole
	ActionQuit
)

// Intent is the 4th‑layer, high‑level description of what the user wants to do.
type Intent struct {
	Action Action
}

// RawInput is the 1st‑layer event emitted directly from an input device.
// Code is a device‑specific identifier (e.g. "arrow_up", "gamepad_dpad_up").
type RawInput struct {
	Device    Device
	Code      string
	Timestamp time.Time
}

// DebouncedInput is the 2nd‑layer representation after debouncing. Key
// repeat is handled by the backends, so this is a thin wrapper.
type DebouncedInput struct {
	Device Device
	Code   string
}

// NewDebouncedInput converts a raw event to a debounced event.
func NewDebouncedInput(raw RawInput) DebouncedInput {
	return DebouncedInput{
		Device: raw.Device,
		Code:   raw.Code,
	}
}

// reserved codes cannot be rebound away from their action.
var reserved = map[string]bool{
	"arrow_up":    true,
	"arrow_down":  true,
	"arrow_left":  true,
	"arrow_right": true,
	"enter":       true,
	"escape":      true,
	"ctrl_c":      true,
}

// Reserved reports whether code is fixed to its action.
func Reserved(code string) bool {
	return reserved[code]
}

// bindings maps raw codes to actions (3rd-layer bindings).
// Multiple codes may point to the same Action.
var bindings = map[string]Action{
	// Pan (arrows, WASD)
	"arrow_up":    ActionPanUp,
	"w":           ActionPanUp,
	"arrow_down":  ActionPanDown,
	"s":           ActionPanDown,
	"arrow_left":  ActionPanLeft,
	"a":           ActionPanLeft,
	"arrow_right": ActionPanRight,
	"d":           ActionPanRight,

	// Zoom
	"=":               ActionZoomIn,
	"+":               ActionZoomIn,
	"numpad_add":      ActionZoomIn,
	"-":               ActionZoomOut,
	"numpad_subtract": ActionZoomOut,
	"0":               ActionZoomReset,
	"c":               ActionCenter,

	// Selection cursor (Vim)
	"k": ActionCursorUp,
	"j": ActionCursorDown,
	"h": ActionCursorLeft,
	"l": ActionCursorRight,

	// Placement
	"enter": ActionConfirm,
	"space": ActionConfirm,
	"]":     ActionNextColor,
	"[":     ActionPrevColor,

	// Meta
	"tab":        ActionToggleSidebar,
	"y":          ActionCopyCoordinates,
	"p":          ActionScreenshot,
	"screenshot": ActionScreenshot,
	"i":          ActionStats,
	"r":          ActionReconnect,
	"`":          ActionConsole,
	":":          ActionConsole,
	"q":          ActionQuit,
	"quit":       ActionQuit,
	"escape":     ActionQuit,
	"ctrl_c":     ActionQuit,

	// Controller/gamepad specific bindings
	"gamepad_dpad_up":    ActionCursorUp,
	"gamepad_dpad_down":  ActionCursorDown,
	"gamepad_dpad_left":  ActionCursorLeft,
	"gamepad_dpad_right": ActionCursorRight,
	"gamepad_a":          ActionConfirm,
	"gamepad_lb":         ActionPrevColor,
	"gamepad_rb":         ActionNextColor,
	"gamepad_start":      ActionToggleSidebar,
}

// MapToIntent is the 3rd+4th layer: it applies the current bindings to a
// debounced input and returns a high‑level Intent.
func MapToIntent(ev DebouncedInput) Intent {
	if act, ok := bindings[ev.Code]; ok {
		return Intent{Action: act}
	}
	return Intent{Action: ActionNone}
}

// Resolve maps a raw code straight to its action.
func Resolve(device Device, code string) Action {
	return MapToIntent(NewDebouncedInput(RawInput{Device: device, Code: code})).Action
}

// ActionName returns a human-friendly name for an action.
func ActionName(a Action) string {
	switch a {
	case ActionPanUp:
		return "Pan Up"
	case ActionPanDown:
		return "Pan Down"
	case ActionPanLeft:
		return "Pan Left"
	case ActionPanRight:
		return "Pan Right"
	case ActionZoomIn:
		return "Zoom In"
	case ActionZoomOut:
		return "Zoom Out"
	case ActionZoomReset:
		return "Reset Zoom"
	case ActionCenter:
		return "Center"
	case ActionCursorUp:
		return "Cursor Up"
	case ActionCursorDown:
		return "Cursor Down"
	case ActionCursorLeft:
		return "Cursor Left"
	case ActionCursorRight:
		return "Cursor Right"
	case ActionConfirm:
		return "Place Pixel"
	case ActionNextColor:
		return "Next Color"
	case ActionPrevColor:
		return "Previous Color"
	case ActionToggleSidebar:
		return "Toggle Sidebar"
	case ActionCopyCoordinates:
		return "Copy Coordinates"
	case ActionScreenshot:
		return "Screenshot"
	case ActionStats:
		return "Server Stats"
	case ActionReconnect:
		return "Reconnect"
	case ActionConsole:
		return "Console"
	case ActionQuit:
		return "Quit"
	default:
		return "None"
	}
}

// GetBindingsByAction returns the current bindings grouped by action.
func GetBindingsByAction() map[Action][]string {
	result := make(map[Action][]string)
	for code, act := range bindings {
		result[act] = append(result[act], code)
	}
	// Stable ordering so help text doesn't flicker.
	for act, codes := range result {
		sort.Strings(codes)
		result[act] = codes
	}
	return result
}

// ActionByName finds an action by its ActionName, ignoring case. Underscores
// stand for spaces so names can be typed as one word.
func ActionByName(name string) (Action, bool) {
	name = strings.ReplaceAll(name, "_", " ")
	for a := ActionNone + 1; a <= ActionQuit; a++ {
		if strings.EqualFold(ActionName(a), name) {
			return a, true
		}
	}
	return ActionNone, false
}

// SetSingleBinding replaces all bindings for the given action with a single
// code. Reserved codes keep their action.
func SetSingleBinding(action Action, code string) {
	for c, a := range bindings {
		if reserved[c] {
			continue
		}
		if a == action {
			delete(bindings, c)
		}
	}
	if code != "" && !reserved[code] {
		bindings[code] = action
	}
}
