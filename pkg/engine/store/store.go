// Package store provides the shared, path-addressable client state and its
// change notifications.
//
// Paths are dotted ("canvas.scale"). Interior nodes are containers created on
// demand; leaves hold arbitrary values. Listeners registered on a path are told
// about writes to that exact path and, as an explicit tree walk from the
// written leaf up to the root (""), about writes below every ancestor.
package store

import (
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/zyedidia/generic/mapset"
)

// maxFlushRounds bounds how many rounds of writes issued from inside listeners
// are delivered before the rest is dropped.
const maxFlushRounds = 64

// Change describes one notification delivered to a Listener.
type Change struct {
	// Path is the path the listener is registered on.
	Path string
	// Value is the current value at Path. For ancestor notifications this is
	// the store's live container: later writes show through it, so copy it
	// if it must outlive the listener.
	Value any
	// Previous is the value that was overwritten. Nil for ancestors.
	Previous any
	// Source is the path that was written.
	Source string
}

// Ancestor reports whether the change was delivered because something below
// the listener's path was written.
func (c Change) Ancestor() bool {
	return c.Path != c.Source
}

// Listener receives change notifications. Listeners run synchronously on the
// writer's goroutine, after the write is visible through Get.
type Listener func(Change)

type subscription struct {
	id uint64
	fn Listener
}

type write struct {
	path     string
	value    any
	previous any
}

// Store is the single source of truth shared by all client components.
// Construct with New; the zero value is not usable.
type Store struct {
	mu     sync.RWMutex
	root   map[string]any
	subs   map[string][]subscription
	active mapset.Set[uint64]
	nextID uint64

	// writes made while a delivery is running are queued to that delivery
	dispatchMu  sync.Mutex
	dispatching bool
	pending     [][]write
}

// New returns an empty store.
func New() *Store {
	return &Store{
		root:   make(map[string]any),
		subs:   make(map[string][]subscription),
		active: mapset.New[uint64](),
	}
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// ancestors returns the ancestor paths of path, nearest first, ending with
// the root path "".
func ancestors(path string) []string {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil
	}
	out := make([]string, 0, len(parts))
	for i := len(parts) - 1; i > 0; i-- {
		out = append(out, strings.Join(parts[:i], "."))
	}
	return append(out, "")
}

// Get returns the value at path. The second result is false when nothing has
// been written there. Containers are returned as the store's live
// map[string]any: later writes show through them, and the caller must not
// mutate them.
func (s *Store) Get(path string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(path)
}

func (s *Store) lookupLocked(path string) (any, bool) {
	var node any = s.root
	for _, part := range splitPath(path) {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// putLocked writes value at path, creating containers on the way, and returns
// the overwritten value.
func (s *Store) putLocked(path string, value any) any {
	parts := splitPath(path)
	node := s.root
	for _, part := range parts[:len(parts)-1] {
		next, ok := node[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[part] = next
		}
		node = next
	}
	leaf := parts[len(parts)-1]
	prev := node[leaf]
	node[leaf] = value
	return prev
}

// Set overwrites the value at path and notifies listeners before returning.
func (s *Store) Set(path string, value any) {
	if path == "" {
		log.Printf("store: refusing to overwrite the root")
		return
	}
	s.mu.Lock()
	prev := s.putLocked(path, value)
	s.mu.Unlock()

	s.notify([]write{{path: path, value: value, previous: prev}})
}

// BatchUpdate applies every write first and only then delivers the
// notifications. Writes are applied in path order. Listeners reading several
// paths during the notification pass may still observe values written by
// other listeners in the meantime.
func (s *Store) BatchUpdate(values map[string]any) {
	if len(values) == 0 {
		return
	}
	paths := make([]string, 0, len(values))
	for p := range values {
		if p == "" {
			log.Printf("store: refusing to overwrite the root")
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)

	writes := make([]write, 0, len(paths))
	s.mu.Lock()
	for _, p := range paths {
		prev := s.putLocked(p, values[p])
		writes = append(writes, write{path: p, value: values[p], previous: prev})
	}
	s.mu.Unlock()

	s.notify(writes)
}

// Subscribe registers fn on path and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (s *Store) Subscribe(path string, fn Listener) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[path] = append(s.subs[path], subscription{id: id, fn: fn})
	s.active.Put(id)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.active.Has(id) {
			return
		}
		s.active.Remove(id)
		list := s.subs[path]
		for i, sub := range list {
			if sub.id == id {
				s.subs[path] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(s.subs[path]) == 0 {
			delete(s.subs, path)
		}
	}
}

// notify delivers writes, or queues them when a delivery is already running
// on this store. Queued rounds are flushed by the outermost call.
func (s *Store) notify(writes []write) {
	s.dispatchMu.Lock()
	if s.dispatching {
		s.pending = append(s.pending, writes)
		s.dispatchMu.Unlock()
		return
	}
	s.dispatching = true
	s.dispatchMu.Unlock()

	s.deliver(writes)

	for round := 1; ; round++ {
		s.dispatchMu.Lock()
		if len(s.pending) == 0 {
			s.dispatching = false
			s.dispatchMu.Unlock()
			return
		}
		if round > maxFlushRounds {
			log.Printf("store: dropping %d queued notification batches, listeners keep writing", len(s.pending))
			s.pending = nil
			s.dispatching = false
			s.dispatchMu.Unlock()
			return
		}
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.dispatchMu.Unlock()

		s.deliver(next)
	}
}

func (s *Store) deliver(writes []write) {
	for _, w := range writes {
		s.call(w.path, Change{Path: w.path, Value: w.value, Previous: w.previous, Source: w.path})
	}

	seen := mapset.New[string]()
	for _, w := range writes {
		for _, a := range ancestors(w.path) {
			if seen.Has(a) {
				continue
			}
			seen.Put(a)
			s.mu.RLock()
			v, _ := s.lookupLocked(a)
			s.mu.RUnlock()
			s.call(a, Change{Path: a, Value: v, Source: w.path})
		}
	}
}

func (s *Store) call(path string, c Change) {
	s.mu.RLock()
	list := append([]subscription(nil), s.subs[path]...)
	s.mu.RUnlock()

	for _, sub := range list {
		s.mu.RLock()
		live := s.active.Has(sub.id)
		s.mu.RUnlock()
		if live {
			sub.fn(c)
		}
	}
}
