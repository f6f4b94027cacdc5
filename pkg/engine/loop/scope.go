package loop

import (
	"time"

	"github.com/zyedidia/generic/mapset"
)

// Scope owns the timers of one component. Stop releases all of them, so a
// component's teardown is a single call.
type Scope struct {
	clock  Clock
	timers mapset.Set[*scoped]
}

type scoped struct {
	scope *Scope
	inner Timer
}

// NewScope returns a scope scheduling on c.
func NewScope(c Clock) *Scope {
	return &Scope{clock: c, timers: mapset.New[*scoped]()}
}

// Clock returns the clock the scope schedules on.
func (s *Scope) Clock() Clock {
	return s.clock
}

// AfterFunc schedules fn once. The handle leaves the scope when it fires.
func (s *Scope) AfterFunc(d time.Duration, fn func()) Timer {
	h := &scoped{scope: s}
	h.inner = s.clock.AfterFunc(d, func() {
		s.timers.Remove(h)
		fn()
	})
	s.timers.Put(h)
	return h
}

// Every schedules fn periodically until stopped.
func (s *Scope) Every(d time.Duration, fn func()) Timer {
	h := &scoped{scope: s}
	h.inner = Every(s.clock, d, fn)
	s.timers.Put(h)
	return h
}

// Active returns how many timers the scope still holds.
func (s *Scope) Active() int {
	return s.timers.Size()
}

// Stop cancels every timer in the scope.
func (s *Scope) Stop() {
	var all []*scoped
	s.timers.Each(func(h *scoped) { all = append(all, h) })
	for _, h := range all {
		h.Stop()
	}
}

func (h *scoped) Stop() bool {
	h.scope.timers.Remove(h)
	return h.inner.Stop()
}
