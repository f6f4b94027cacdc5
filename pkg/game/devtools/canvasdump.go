package devtools

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"pixelbattle/pkg/engine/store"
	"pixelbattle/pkg/game/state"
)

// canvasDumpFilename is written next to screenshots.
const canvasDumpFilename = "canvas.txt"

// colorCount is one line of the color summary.
type colorCount struct {
	hex   string
	count int
}

// countColors tallies the known pixels, most frequent first.
func countColors(pm state.PixelMap) []colorCount {
	counts := make(map[string]int)
	for _, hex := range pm {
		counts[hex]++
	}
	out := make([]colorCount, 0, len(counts))
	for hex, n := range counts {
		out = append(out, colorCount{hex, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].hex < out[j].hex
	})
	return out
}

// sortedCells returns the cells of pm in row-major order.
func sortedCells(pm state.PixelMap) []state.Cell {
	cells := make([]state.Cell, 0, len(pm))
	for c := range pm {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
	return cells
}

// WriteCanvasDump writes a plain text debug dump of the client state:
// metadata, a color summary and every known pixel. Sections use
// "key: value" lines so the dump diffs cleanly.
func WriteCanvasDump(w io.Writer, s *store.Store, width, height int, now time.Time) error {
	bw := bufio.NewWriter(w)
	pm := state.Pixels(s)
	offX, offY := state.Offset(s)
	selected := "none"
	if c, ok := state.Selected(s); ok {
		selected = fmt.Sprintf("%d,%d", c.X, c.Y)
	}
	active, remaining := state.Cooldown(s)

	fmt.Fprintln(bw, "=== CANVAS DUMP ===")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "--- Metadata ---")
	fmt.Fprintf(bw, "time: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(bw, "canvas_width: %d\n", width)
	fmt.Fprintf(bw, "canvas_height: %d\n", height)
	fmt.Fprintln(bw, "coordinate_system: x,y (0-based, x=horizontal, y=vertical)")
	fmt.Fprintf(bw, "scale: %.4f\n", state.Scale(s))
	fmt.Fprintf(bw, "offset: %.2f,%.2f\n", offX, offY)
	fmt.Fprintf(bw, "selected_pixel: %s\n", selected)
	fmt.Fprintf(bw, "selected_color: %s\n", state.SelectedColor(s))
	fmt.Fprintf(bw, "cooldown: %v (%ds)\n", active, remaining)
	fmt.Fprintf(bw, "status: %s\n", state.Status(s))
	fmt.Fprintf(bw, "online_users: %d\n", state.OnlineUsers(s))
	fmt.Fprintf(bw, "known_pixels: %d\n", len(pm))
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "--- Colors (pixels per color) ---")
	for _, cc := range countColors(pm) {
		fmt.Fprintf(bw, "%s: %d\n", cc.hex, cc.count)
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "--- Pixels (x,y color) ---")
	for _, c := range sortedCells(pm) {
		fmt.Fprintf(bw, "%d,%d %s\n", c.X, c.Y, pm[c])
	}
	return bw.Flush()
}

// DumpCanvasToFile writes the dump into dir and returns its path.
func DumpCanvasToFile(s *store.Store, width, height int, dir string, now time.Time) (string, error) {
	path, err := filepath.Abs(filepath.Join(dir, canvasDumpFilename))
	if err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("canvas dump: %w", err)
	}
	defer f.Close()

	if err := WriteCanvasDump(f, s, width, height, now); err != nil {
		return "", fmt.Errorf("canvas dump: %w", err)
	}
	return path, f.Close()
}
