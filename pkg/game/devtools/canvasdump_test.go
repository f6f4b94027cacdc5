package devtools

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pixelbattle/pkg/engine/store"
	"pixelbattle/pkg/game/state"
)

func TestWriteCanvasDump(t *testing.T) {
	s := store.New()
	state.Init(s, state.Defaults{Color: "#000000"})
	state.PutPixels(s,
		state.Pixel{X: 3, Y: 1, Color: "#FF0000"},
		state.Pixel{X: 1, Y: 1, Color: "#00FF00"},
		state.Pixel{X: 2, Y: 0, Color: "#FF0000"},
	)
	s.Set(state.PathSelected, &state.Cell{X: 1, Y: 1})

	var buf bytes.Buffer
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	if err := WriteCanvasDump(&buf, s, 10, 5, now); err != nil {
		t.Fatalf("WriteCanvasDump error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"time: 2026-03-04T05:06:07Z\n",
		"canvas_width: 10\n",
		"selected_pixel: 1,1\n",
		"known_pixels: 3\n",
		"--- Colors (pixels per color) ---\n#FF0000: 2\n#00FF00: 1\n",
		"--- Pixels (x,y color) ---\n2,0 #FF0000\n1,1 #00FF00\n3,1 #FF0000\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestDumpCanvasToFile(t *testing.T) {
	s := store.New()
	state.Init(s, state.Defaults{Color: "#000000"})

	dir := t.TempDir()
	path, err := DumpCanvasToFile(s, 4, 4, dir, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("DumpCanvasToFile error = %v", err)
	}
	if filepath.Base(path) != "canvas.txt" {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "=== CANVAS DUMP ===") {
		t.Errorf("unexpected dump header: %q", firstN(string(data), 40))
	}

	if _, err := DumpCanvasToFile(s, 4, 4, filepath.Join(dir, "missing"), time.Unix(0, 0)); err == nil {
		t.Error("dump into a missing directory succeeded")
	}
}

func TestPalettePattern(t *testing.T) {
	palette := []string{"#111111", "#222222", "#333333"}
	pixels := PalettePattern(20, 12, palette)

	pm := state.NewPixelMap(pixels)
	if pm[state.Cell{X: 0, Y: 0}] != "#111111" || pm[state.Cell{X: 19, Y: 11}] != "#111111" {
		t.Error("frame corners missing")
	}
	// First block at (3,3), second at (10,3); the third wraps to the next row
	if pm[state.Cell{X: 3, Y: 3}] != "#111111" || pm[state.Cell{X: 6, Y: 6}] != "#111111" {
		t.Error("first block misplaced")
	}
	if pm[state.Cell{X: 10, Y: 3}] != "#222222" {
		t.Error("second block misplaced")
	}
	if got := pm[state.Cell{X: 3, Y: 10}]; got != "" {
		t.Errorf("third block should not fit below row 10, got %q", got)
	}
	for _, p := range pixels {
		if p.X < 0 || p.X >= 20 || p.Y < 0 || p.Y >= 12 {
			t.Fatalf("pixel %v outside the canvas", p)
		}
	}

	if PalettePattern(0, 10, palette) != nil || PalettePattern(10, 10, nil) != nil {
		t.Error("degenerate input produced pixels")
	}
}

func firstN(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
