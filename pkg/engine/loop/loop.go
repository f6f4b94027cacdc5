// Package loop funnels work from timers and network goroutines onto the single
// frame goroutine that owns the Store, so state mutation and painting never
// interleave.
package loop

import (
	"log"
	"sync"
)

// maxDrainPasses bounds how many times Drain re-checks for tasks that were
// posted by the tasks it just ran.
const maxDrainPasses = 8

// Loop is a task queue. Any goroutine may Post; only the frame goroutine
// calls Drain.
type Loop struct {
	mu    sync.Mutex
	tasks []func()
	wake  chan struct{}
}

// New returns an empty loop.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post queues fn to run on the next Drain.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	// Non-blocking wake; a pending signal already covers this task
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Wake is signalled whenever a task is posted. Backends that block between
// frames select on it.
func (l *Loop) Wake() <-chan struct{} {
	return l.wake
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

// Drain runs queued tasks in post order and returns how many ran.
func (l *Loop) Drain() int {
	ran := 0
	for pass := 0; pass < maxDrainPasses; pass++ {
		l.mu.Lock()
		batch := l.tasks
		l.tasks = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return ran
		}
		for _, fn := range batch {
			fn()
			ran++
		}
	}
	if n := l.Pending(); n > 0 {
		log.Printf("loop: %d tasks deferred to next frame", n)
	}
	return ran
}
