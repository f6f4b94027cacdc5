package loop

import (
	"sync/atomic"
	"time"
)

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call stopped the
	// timer before it fired.
	Stop() bool
}

// Clock supplies time and delayed callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// NewClock returns a wall clock whose callbacks run on l during Drain.
func NewClock(l *Loop) Clock {
	return &wallClock{loop: l}
}

type wallClock struct {
	loop *Loop
}

type wallTimer struct {
	t       *time.Timer
	stopped atomic.Bool
}

func (c *wallClock) Now() time.Time {
	return time.Now()
}

func (c *wallClock) AfterFunc(d time.Duration, fn func()) Timer {
	h := &wallTimer{}
	h.t = time.AfterFunc(d, func() {
		c.loop.Post(func() {
			// Stop may have been called after the timer fired but before Drain
			if h.stopped.Load() {
				return
			}
			fn()
		})
	})
	return h
}

func (h *wallTimer) Stop() bool {
	already := h.stopped.Swap(true)
	return h.t.Stop() && !already
}

// Every calls fn every d until the returned timer is stopped.
func Every(c Clock, d time.Duration, fn func()) Timer {
	r := &repeating{clock: c, every: d, fn: fn}
	r.schedule()
	return r
}

type repeating struct {
	clock   Clock
	every   time.Duration
	fn      func()
	current Timer
	stopped bool
}

func (r *repeating) schedule() {
	r.current = r.clock.AfterFunc(r.every, func() {
		if r.stopped {
			return
		}
		r.fn()
		if !r.stopped {
			r.schedule()
		}
	})
}

func (r *repeating) Stop() bool {
	if r.stopped {
		return false
	}
	r.stopped = true
	return r.current.Stop()
}
