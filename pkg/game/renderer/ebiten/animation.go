package ebiten

import (
	"image/color"
	"math"
	"time"
)

// pulse returns a sine wave between lo and hi with the given period.
func pulse(now time.Time, period time.Duration, lo, hi float64) float64 {
	phase := float64(now.UnixMilli()%period.Milliseconds()) / float64(period.Milliseconds())
	v := (math.Sin(phase*2*math.Pi) + 1.0) / 2.0 // 0.0 to 1.0
	return lo + (hi-lo)*v
}

// brighten scales the RGB channels of c by k, leaving alpha alone.
func brighten(c color.RGBA, k float64) color.RGBA {
	return color.RGBA{
		R: uint8(min(float64(c.R)*k, 255)),
		G: uint8(min(float64(c.G)*k, 255)),
		B: uint8(min(float64(c.B)*k, 255)),
		A: c.A,
	}
}

// statusColor returns the indicator color for a connection status. The
// connecting state pulses between 50% and 100% brightness.
func statusColor(status string, now time.Time) color.RGBA {
	switch status {
	case "connected":
		return colorConnected
	case "connecting":
		return brighten(colorConnecting, pulse(now, time.Second, 0.5, 1.0))
	case "failed":
		return colorFailed
	default:
		return colorDisconnected
	}
}

// easeInOut applies a smooth ease-in-out curve
func easeInOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}
