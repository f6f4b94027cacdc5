package devtools

import "pixelbattle/pkg/game/state"

// patternMargin is the gap in cells between swatch blocks.
const patternMargin = 3

// patternBlock is the side of one swatch block in cells.
const patternBlock = 4

// PalettePattern lays out every palette color as a square block, left to right
// and wrapping at the canvas edge, with a margin between blocks. A one cell
// frame marks the canvas border in the first color. It is used to check the
// renderer and the viewport without a server.
func PalettePattern(width, height int, palette []string) []state.Pixel {
	if width <= 0 || height <= 0 || len(palette) == 0 {
		return nil
	}

	var pixels []state.Pixel
	// Frame
	for x := 0; x < width; x++ {
		pixels = append(pixels,
			state.Pixel{X: x, Y: 0, Color: palette[0]},
			state.Pixel{X: x, Y: height - 1, Color: palette[0]})
	}
	for y := 1; y < height-1; y++ {
		pixels = append(pixels,
			state.Pixel{X: 0, Y: y, Color: palette[0]},
			state.Pixel{X: width - 1, Y: y, Color: palette[0]})
	}

	// Swatch blocks
	step := patternBlock + patternMargin
	col, row := patternMargin, patternMargin
	for _, hex := range palette {
		if col+patternBlock > width-1 {
			col = patternMargin
			row += step
		}
		if row+patternBlock > height-1 {
			break
		}
		for dy := range patternBlock {
			for dx := range patternBlock {
				pixels = append(pixels, state.Pixel{X: col + dx, Y: row + dy, Color: hex})
			}
		}
		col += step
	}
	return pixels
}
