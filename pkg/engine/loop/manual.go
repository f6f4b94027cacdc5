package loop

import (
	"sort"
	"time"
)

// ManualClock is a Clock that only moves when told to. Callbacks run
// synchronously inside Advance, in due order. Intended for tests.
type ManualClock struct {
	now    time.Time
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	clock *ManualClock
	due   time.Time
	seq   int
	fn    func()
	done  bool
}

// NewManualClock returns a clock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	return c.now
}

func (c *ManualClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.seq++
	t := &manualTimer{clock: c, due: c.now.Add(d), seq: c.seq, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Pending returns how many timers have not fired or been stopped.
func (c *ManualClock) Pending() int {
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

// NextDelay returns the delay until the earliest pending timer.
func (c *ManualClock) NextDelay() (time.Duration, bool) {
	var best *manualTimer
	for _, t := range c.timers {
		if t.done {
			continue
		}
		if best == nil || t.due.Before(best.due) {
			best = t
		}
	}
	if best == nil {
		return 0, false
	}
	return best.due.Sub(c.now), true
}

// Advance moves time forward by d, firing every timer that becomes due,
// including timers scheduled by callbacks within the window.
func (c *ManualClock) Advance(d time.Duration) {
	end := c.now.Add(d)
	for {
		due := c.dueBy(end)
		if due == nil {
			break
		}
		c.now = due.due
		due.done = true
		due.fn()
	}
	c.now = end
	c.compact()
}

func (c *ManualClock) dueBy(end time.Time) *manualTimer {
	var ready []*manualTimer
	for _, t := range c.timers {
		if !t.done && !t.due.After(end) {
			ready = append(ready, t)
		}
	}
	if len(ready) == 0 {
		return nil
	}
	sort.Slice(ready, func(i, j int) bool {
		if ready[i].due.Equal(ready[j].due) {
			return ready[i].seq < ready[j].seq
		}
		return ready[i].due.Before(ready[j].due)
	})
	return ready[0]
}

func (c *ManualClock) compact() {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.done {
			live = append(live, t)
		}
	}
	c.timers = live
}

func (t *manualTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	return true
}
