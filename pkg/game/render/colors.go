package render

import (
	"image/color"
	"log"

	"pixelbattle/pkg/game/state"
)

var fallbackColor = color.RGBA{0xff, 0x00, 0xff, 0xff}

// maxCachedColors bounds the cache; color strings come from the server.
const maxCachedColors = 1024

// colorCache remembers parsed hex colors. Unparseable strings are logged once
// and drawn in magenta. A full cache is emptied before the next insert.
type colorCache struct {
	parsed map[string]color.RGBA
}

func newColorCache() *colorCache {
	return &colorCache{parsed: make(map[string]color.RGBA)}
}

func (c *colorCache) get(hex string) color.RGBA {
	if rgba, ok := c.parsed[hex]; ok {
		return rgba
	}
	rgba, err := state.ParseHex(hex)
	if err != nil {
		log.Printf("render: %v", err)
		rgba = fallbackColor
	}
	if len(c.parsed) >= maxCachedColors {
		clear(c.parsed)
	}
	c.parsed[hex] = rgba
	return rgba
}
