package app

import "log"

// Level classifies a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notifier shows messages to the user.
type Notifier interface {
	// Notify shows a message that goes away on its own.
	Notify(level Level, message string)
	// Persistent shows a message that stays until the program exits.
	Persistent(message string)
}

// LogNotifier writes notifications to the log. Used when no backend is
// attached.
type LogNotifier struct{}

func (LogNotifier) Notify(level Level, message string) {
	log.Printf("[%s] %s", level, message)
}

func (LogNotifier) Persistent(message string) {
	log.Printf("[persistent] %s", message)
}
