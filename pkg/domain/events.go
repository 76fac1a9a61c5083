package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventKey      EventType = "key"
	EventEvaluate EventType = "evaluate"
	EventError    EventType = "error"
	EventClear    EventType = "clear"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// KeyEvent is emitted for every key handled by the machine.
type KeyEvent struct {
	EventBase
	Key     Key  `json:"key"`
	Ignored bool `json:"ignored,omitempty"` // true when dropped in the error state
}

// EvaluateEvent is emitted after the evaluator runs.
type EvaluateEvent struct {
	EventBase
	Left     string   `json:"left"`
	Right    string   `json:"right"`
	Operator Operator `json:"operator"`
	Result   string   `json:"result,omitempty"`
}

// ErrorEvent is emitted when the machine enters the error state.
type ErrorEvent struct {
	EventBase
	Kind ErrorKind `json:"kind"`
	Err  error     `json:"-"`
}

// LifecycleHooks defines callbacks for machine observability.
type LifecycleHooks struct {
	OnKey      func(context.Context, *KeyEvent)
	OnEvaluate func(context.Context, *EvaluateEvent)
	OnError    func(context.Context, *ErrorEvent)
	OnClear    func(context.Context, *EventBase)
}
