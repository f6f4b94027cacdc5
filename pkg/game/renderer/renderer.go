package renderer

import (
	"log"
	"sync"
	"time"

	"pixelbattle/pkg/game/app"
)

const (
	// MessageLifetime is how long a notification stays on screen.
	MessageLifetime = 10 * time.Second
	// MaxVisibleMessages caps the notification panel.
	MaxVisibleMessages = 4
)

// messageEntry is a notification with the time it was raised, for fade-out.
type messageEntry struct {
	Level     app.Level
	Text      string
	Timestamp time.Time
}

// Toast is a notification as it should be drawn now.
type Toast struct {
	Level app.Level
	Text  string
	// Alpha is 1 for fresh messages, falling to 0 over the last 30% of the
	// lifetime.
	Alpha float64
}

// Messages queues notifications for a backend to draw. It implements
// app.Notifier.
type Messages struct {
	now func() time.Time

	mu         sync.RWMutex
	entries    []messageEntry
	persistent string
}

// NewMessages returns an empty queue using now as its clock.
func NewMessages(now func() time.Time) *Messages {
	if now == nil {
		now = time.Now
	}
	return &Messages{now: now}
}

// Notify implements app.Notifier.
func (m *Messages) Notify(level app.Level, message string) {
	log.Printf("[%s] %s", level, message)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, messageEntry{Level: level, Text: message, Timestamp: m.now()})
}

// Persistent implements app.Notifier. Only the latest persistent message is
// kept.
func (m *Messages) Persistent(message string) {
	log.Printf("[persistent] %s", message)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persistent = message
}

// Banner returns the persistent message, if any.
func (m *Messages) Banner() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.persistent
}

// Visible drops expired messages and returns the most recent ones, oldest
// first.
func (m *Messages) Visible() []Toast {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.entries[:0]
	for _, e := range m.entries {
		if now.Sub(e.Timestamp) < MessageLifetime {
			live = append(live, e)
		}
	}
	m.entries = live

	start := max(0, len(live)-MaxVisibleMessages)
	toasts := make([]Toast, 0, len(live)-start)
	for _, e := range live[start:] {
		toasts = append(toasts, Toast{Level: e.Level, Text: e.Text, Alpha: fade(now.Sub(e.Timestamp))})
	}
	return toasts
}

func fade(age time.Duration) float64 {
	fadeStart := MessageLifetime * 7 / 10
	if age <= fadeStart {
		return 1
	}
	alpha := 1 - float64(age-fadeStart)/float64(MessageLifetime-fadeStart)
	return max(0, alpha)
}
