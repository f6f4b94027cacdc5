package session

import (
	"math/rand/v2"
	"time"
)

// Backoff returns the reconnect delay before attempt n (1-based), ignoring
// jitter: base doubled per previous attempt, never above limit.
func Backoff(base, limit time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= limit || d <= 0 {
			return limit
		}
	}
	if d > limit {
		return limit
	}
	return d
}

// Jitter returns a random addition of up to 10% of d.
func Jitter(d time.Duration) time.Duration {
	return time.Duration(rand.Float64() * 0.1 * float64(d))
}
