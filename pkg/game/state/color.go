package state

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"
)

// ParseHex converts "#RRGGBB" or "#RGB" to an opaque color. Every digit must
// be hexadecimal.
func ParseHex(s string) (color.RGBA, error) {
	digits := strings.TrimPrefix(s, "#")
	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}
	if len(digits) != 6 {
		return color.RGBA{}, fmt.Errorf("color %q: want #RRGGBB or #RGB", s)
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.RGBA{R: b[0], G: b[1], B: b[2], A: 255}, nil
}

// ValidHex reports whether s parses as a color.
func ValidHex(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	_, err := ParseHex(s)
	return err == nil
}
