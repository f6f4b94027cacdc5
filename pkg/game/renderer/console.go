package renderer

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/leonelquinteros/gotext"

	"pixelbattle/pkg/engine/input"
	"pixelbattle/pkg/game/app"
	"pixelbattle/pkg/game/state"
)

// ErrUnknownCommand is returned for console input that names no command.
var ErrUnknownCommand = errors.New("unknown command")

type command struct {
	usage string
	help  string
	run   func(c *app.Coordinator, args []string) (string, error)
}

var commands map[string]command

// dynamicGet translates help strings looked up at runtime, keeping vet's
// constant format string check quiet.
var dynamicGet = gotext.Get

func init() {
	commands = map[string]command{
		"help": {
			usage: "help",
			help:  "List commands",
			run:   runHelp,
		},
		"goto": {
			usage: "goto X Y",
			help:  "Scroll to a cell and select it",
			run:   runGoto,
		},
		"color": {
			usage: "color #RRGGBB",
			help:  "Choose the placement color",
			run: func(c *app.Coordinator, args []string) (string, error) {
				if len(args) != 1 {
					return "", errUsage("color")
				}
				if !c.SelectColor(args[0]) {
					return "", fmt.Errorf("%q is not a #RRGGBB color", args[0])
				}
				return gotext.Get("Color set to %s", strings.ToUpper(args[0])), nil
			},
		},
		"place": {
			usage: "place",
			help:  "Place the selected pixel",
			run: func(c *app.Coordinator, args []string) (string, error) {
				if !c.ConfirmPlacement() {
					return "", errors.New(gotext.Get("Placement rejected"))
				}
				return gotext.Get("Pixel placed"), nil
			},
		},
		"stats": {
			usage: "stats",
			help:  "Ask the server for statistics",
			run: func(c *app.Coordinator, args []string) (string, error) {
				c.RequestStats()
				return gotext.Get("Stats requested"), nil
			},
		},
		"screenshot": {
			usage: "screenshot",
			help:  "Save the canvas view as PNG",
			run: func(c *app.Coordinator, args []string) (string, error) {
				return c.Screenshot()
			},
		},
		"dump": {
			usage: "dump",
			help:  "Write the known pixels to canvas.txt",
			run: func(c *app.Coordinator, args []string) (string, error) {
				return c.DumpCanvas()
			},
		},
		"testpattern": {
			usage: "testpattern",
			help:  "Draw the palette test pattern locally",
			run: func(c *app.Coordinator, args []string) (string, error) {
				return gotext.Get("Drew %d test pixels", c.ShowTestPattern()), nil
			},
		},
		"bindings": {
			usage: "bindings",
			help:  "List key bindings",
			run:   runBindings,
		},
		"bind": {
			usage: "bind ACTION KEY",
			help:  "Bind a key to an action, replacing its other keys",
			run:   runBind,
		},
		"reconnect": {
			usage: "reconnect",
			help:  "Connect again after a failure",
			run: func(c *app.Coordinator, args []string) (string, error) {
				c.Reconnect()
				return state.Status(c.Store()), nil
			},
		},
		"disconnect": {
			usage: "disconnect",
			help:  "Close the connection",
			run: func(c *app.Coordinator, args []string) (string, error) {
				c.Session().Disconnect()
				return state.Status(c.Store()), nil
			},
		},
		"info": {
			usage: "info",
			help:  "Show connection and view state",
			run:   runInfo,
		},
	}
}

func errUsage(name string) error {
	return fmt.Errorf("usage: %s", commands[name].usage)
}

// Execute runs one console line and returns the text to show for it.
func Execute(c *app.Coordinator, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, ok := commands[strings.ToLower(fields[0])]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
	}
	return cmd.run(c, fields[1:])
}

func runHelp(*app.Coordinator, []string) (string, error) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-16s %s", commands[name].usage, dynamicGet(commands[name].help))
	}
	return b.String(), nil
}

func runGoto(c *app.Coordinator, args []string) (string, error) {
	if len(args) != 2 {
		return "", errUsage("goto")
	}
	x, errX := strconv.Atoi(strings.TrimSuffix(args[0], ","))
	y, errY := strconv.Atoi(args[1])
	if errX != nil || errY != nil {
		return "", errUsage("goto")
	}
	cell := state.Cell{X: x, Y: y}
	if !c.Goto(cell) {
		cfg := c.Config()
		return "", fmt.Errorf("(%d, %d) is outside the %dx%d canvas", x, y, cfg.CanvasWidth, cfg.CanvasHeight)
	}
	return gotext.Get("Selected (%d, %d)", x, y), nil
}

func runBindings(*app.Coordinator, []string) (string, error) {
	byAction := input.GetBindingsByAction()
	actions := make([]input.Action, 0, len(byAction))
	for a := range byAction {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })

	lines := make([]string, 0, len(actions))
	for _, a := range actions {
		lines = append(lines, fmt.Sprintf("%-18s %s", input.ActionName(a), strings.Join(byAction[a], ", ")))
	}
	return strings.Join(lines, "\n"), nil
}

func runBind(_ *app.Coordinator, args []string) (string, error) {
	if len(args) != 2 {
		return "", errUsage("bind")
	}
	action, ok := input.ActionByName(args[0])
	if !ok {
		return "", fmt.Errorf("unknown action %q", args[0])
	}
	key := strings.ToLower(args[1])
	if input.Reserved(key) {
		return "", fmt.Errorf("%s is reserved", key)
	}
	input.SetSingleBinding(action, key)
	return gotext.Get("%s bound to %s", input.ActionName(action), key), nil
}

func runInfo(c *app.Coordinator, _ []string) (string, error) {
	s := c.Store()
	active, remaining := state.Cooldown(s)
	selected := "-"
	if cell, ok := state.Selected(s); ok {
		selected = fmt.Sprintf("%d,%d", cell.X, cell.Y)
	}
	lines := []string{
		fmt.Sprintf("status      %s (attempts %d)", state.Status(s), state.ReconnectAttempts(s)),
		fmt.Sprintf("online      %d", state.OnlineUsers(s)),
		fmt.Sprintf("latency     %s", state.Latency(s)),
		fmt.Sprintf("pixels      %d", len(state.Pixels(s))),
		fmt.Sprintf("scale       %.2f", state.Scale(s)),
		fmt.Sprintf("selected    %s", selected),
		fmt.Sprintf("color       %s", state.SelectedColor(s)),
		fmt.Sprintf("cooldown    %v (%ds)", active, remaining),
	}
	return strings.Join(lines, "\n"), nil
}
