// Package progress carries batch progress events from the orchestrator to
// any number of listeners.
package progress

import (
	"time"

	"github.com/google/uuid"
)

// EventType tags a progress event
type EventType string

const (
	TypeProgress EventType = "progress"
	TypeError    EventType = "error"
	TypeComplete EventType = "complete"
)

// Event reports the state of a running batch
type Event struct {
	BatchID   string    `json:"batch_id"`
	Type      EventType `json:"type"`
	Processed int       `json:"processed"`
	Total     int       `json:"total"`
	Message   string    `json:"message"`
	StudentID string    `json:"student_id,omitempty"`
	At        time.Time `json:"at"`
}

// Sink receives events. Publish must not block the caller.
type Sink interface {
	Publish(Event)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(Event)

func (f SinkFunc) Publish(e Event) { f(e) }

// Discard drops every event
var Discard Sink = SinkFunc(func(Event) {})

// NewBatchID returns a fresh batch identifier
func NewBatchID() string {
	return uuid.NewString()
}
