package renderer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"pixelbattle/pkg/engine/input"
	"pixelbattle/pkg/engine/loop"
	"pixelbattle/pkg/game/app"
	"pixelbattle/pkg/game/config"
	"pixelbattle/pkg/game/state"
	"pixelbattle/pkg/game/viewport"
)

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time { return c.t }

func TestMessages_FadeAndExpiry(t *testing.T) {
	clock := &testClock{t: time.Unix(1000, 0)}
	m := NewMessages(clock.now)

	m.Notify(app.LevelInfo, "first")
	clock.t = clock.t.Add(8 * time.Second)
	m.Notify(app.LevelError, "second")

	got := m.Visible()
	if len(got) != 2 {
		t.Fatalf("Visible() = %d toasts, want 2", len(got))
	}
	if got[0].Text != "first" || got[1].Text != "second" {
		t.Errorf("order = %q, %q, want oldest first", got[0].Text, got[1].Text)
	}
	// 8s into a 10s lifetime: one third through the 3s fade
	if a := got[0].Alpha; a < 0.66 || a > 0.67 {
		t.Errorf("alpha at 8s = %v, want about 0.667", a)
	}
	if got[1].Alpha != 1 {
		t.Errorf("fresh alpha = %v, want 1", got[1].Alpha)
	}

	clock.t = clock.t.Add(2 * time.Second)
	got = m.Visible()
	if len(got) != 1 || got[0].Text != "second" {
		t.Errorf("after expiry Visible() = %+v, want only second", got)
	}
}

func TestMessages_CapsVisible(t *testing.T) {
	clock := &testClock{t: time.Unix(0, 0)}
	m := NewMessages(clock.now)
	for _, s := range []string{"a", "b", "c", "d", "e", "f"} {
		m.Notify(app.LevelInfo, s)
	}
	got := m.Visible()
	if len(got) != MaxVisibleMessages {
		t.Fatalf("Visible() = %d, want %d", len(got), MaxVisibleMessages)
	}
	if got[0].Text != "c" || got[3].Text != "f" {
		t.Errorf("visible = %+v, want the newest four", got)
	}
}

func TestMessages_Persistent(t *testing.T) {
	m := NewMessages(nil)
	if m.Banner() != "" {
		t.Error("new queue has a banner")
	}
	m.Persistent("gave up")
	m.Persistent("gave up again")
	if got := m.Banner(); got != "gave up again" {
		t.Errorf("Banner() = %q", got)
	}
}

func newCoordinator(t *testing.T) (*app.Coordinator, *Messages, *[]string) {
	t.Helper()
	clock := loop.NewManualClock(time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC))
	msgs := NewMessages(clock.Now)
	var copied []string
	cfg := config.Default()
	cfg.Colors = []string{"#111111", "#222222"}
	c, err := app.New(app.Deps{
		Config:    cfg,
		Loop:      loop.New(),
		Clock:     clock,
		Container: viewport.ContainerFunc(func() (float64, float64) { return 800, 600 }),
		Notifier:  msgs,
		Clipboard: func(s string) error {
			copied = append(copied, s)
			return nil
		},
		ScreenshotDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	t.Cleanup(c.Close)
	return c, msgs, &copied
}

func TestDispatch(t *testing.T) {
	c, msgs, copied := newCoordinator(t)
	s := c.Store()
	c.Controller().Center()

	if !Dispatch(c, input.ActionZoomIn) {
		t.Fatal("Dispatch(ZoomIn) asked to quit")
	}
	if got := state.Scale(s); got <= 1 {
		t.Errorf("scale after zoom in = %v", got)
	}

	Dispatch(c, input.ActionCursorRight)
	first, ok := state.Selected(s)
	if !ok {
		t.Fatal("cursor did not select a cell")
	}
	Dispatch(c, input.ActionCursorDown)
	if got, _ := state.Selected(s); got != (state.Cell{X: first.X, Y: first.Y + 1}) {
		t.Errorf("after cursor down selected = %v, want below %v", got, first)
	}

	Dispatch(c, input.ActionNextColor)
	if got := state.SelectedColor(s); got != "#111111" {
		t.Errorf("color = %s, want #111111", got)
	}

	Dispatch(c, input.ActionCopyCoordinates)
	if len(*copied) != 1 {
		t.Errorf("copied = %v, want one entry", *copied)
	}

	Dispatch(c, input.ActionConfirm)
	toasts := msgs.Visible()
	if last := toasts[len(toasts)-1]; last.Text != "Not connected to the server" {
		t.Errorf("confirm while offline toast = %q", last.Text)
	}

	open := state.SidebarOpen(s)
	Dispatch(c, input.ActionToggleSidebar)
	if state.SidebarOpen(s) == open {
		t.Error("sidebar did not toggle")
	}

	if Dispatch(c, input.ActionQuit) {
		t.Error("Dispatch(Quit) = true, want false")
	}
}

func TestExecute(t *testing.T) {
	c, _, _ := newCoordinator(t)
	s := c.Store()

	out, err := Execute(c, "goto 10 20")
	if err != nil {
		t.Fatalf("goto error = %v", err)
	}
	if out != "Selected (10, 20)" {
		t.Errorf("goto output = %q", out)
	}
	if got, _ := state.Selected(s); got != (state.Cell{X: 10, Y: 20}) {
		t.Errorf("selected = %v, want {10 20}", got)
	}

	if _, err := Execute(c, "goto 5000 1"); err == nil {
		t.Error("goto outside the canvas succeeded")
	}
	if _, err := Execute(c, "goto x"); err == nil || !strings.HasPrefix(err.Error(), "usage:") {
		t.Errorf("bad goto error = %v, want usage", err)
	}

	if _, err := Execute(c, "COLOR #00ff00"); err != nil {
		t.Errorf("color error = %v", err)
	}
	if got := state.SelectedColor(s); got != "#00FF00" {
		t.Errorf("color = %s, want #00FF00", got)
	}
	if _, err := Execute(c, "color green"); err == nil {
		t.Error("color accepted a name")
	}

	if _, err := Execute(c, "place"); err == nil {
		t.Error("place succeeded while offline")
	}

	info, err := Execute(c, "info")
	if err != nil || !strings.Contains(info, "selected    10,20") {
		t.Errorf("info = %q, %v", info, err)
	}

	help, _ := Execute(c, "help")
	if !strings.Contains(help, "goto X Y") {
		t.Errorf("help does not list goto:\n%s", help)
	}

	before := len(state.Pixels(s))
	if out, err := Execute(c, "testpattern"); err != nil || !strings.HasPrefix(out, "Drew ") {
		t.Errorf("testpattern = %q, %v", out, err)
	}
	if len(state.Pixels(s)) <= before {
		t.Error("testpattern drew nothing")
	}
	if path, err := Execute(c, "dump"); err != nil || !strings.HasSuffix(path, "canvas.txt") {
		t.Errorf("dump = %q, %v", path, err)
	}

	if _, err := Execute(c, "fly"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("unknown command error = %v", err)
	}
	if out, err := Execute(c, "   "); out != "" || err != nil {
		t.Errorf("blank line = %q, %v", out, err)
	}
}

func TestExecute_Bindings(t *testing.T) {
	c, _, _ := newCoordinator(t)
	t.Cleanup(func() { input.SetSingleBinding(input.ActionStats, "i") })

	out, err := Execute(c, "bind server_stats f9")
	if err != nil {
		t.Fatalf("bind error = %v", err)
	}
	if out != "Server Stats bound to f9" {
		t.Errorf("bind output = %q", out)
	}
	if got := input.Resolve(input.DeviceKeyboard, "f9"); got != input.ActionStats {
		t.Errorf("f9 resolves to %v, want ActionStats", got)
	}
	if got := input.Resolve(input.DeviceKeyboard, "i"); got != input.ActionNone {
		t.Errorf("old key still resolves to %v", got)
	}

	list, _ := Execute(c, "bindings")
	if !strings.Contains(list, "Server Stats") || !strings.Contains(list, "f9") {
		t.Errorf("bindings does not list the new key:\n%s", list)
	}

	if _, err := Execute(c, "bind server_stats enter"); err == nil {
		t.Error("binding a reserved key succeeded")
	}
	if got := input.Resolve(input.DeviceKeyboard, "enter"); got != input.ActionConfirm {
		t.Errorf("enter resolves to %v, want ActionConfirm", got)
	}
	if _, err := Execute(c, "bind fly f9"); err == nil {
		t.Error("unknown action accepted")
	}
}
