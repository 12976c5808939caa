package watcher

import "time"

// EventType represents the type of library event.
type EventType int

const (
	// EventAdded is emitted when a new e-book is detected (after settling).
	EventAdded EventType = iota
	// EventRemoved is emitted when an e-book is deleted.
	EventRemoved
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event represents a change to an e-book file in the watched library.
type Event struct {
	// Type is the kind of event (added, removed).
	Type EventType

	// Path is the file path.
	Path string

	// Size is the file size in bytes.
	Size int64

	// ModTime is the file's last modification time.
	ModTime time.Time
}
