package domain

import "time"

// MaxEntryLength is the longest entry the keypad accepts.
const MaxEntryLength = 15

// State represents the snapshot of a calculation.
type State struct {
	// SessionID identifies the session owning this snapshot (optional for the core).
	SessionID string `json:"session_id,omitempty"`

	// Entry is the number being typed (CurrentEntry).
	Entry string `json:"entry"`

	// Operator is the operation awaiting its second operand (OpNone if none).
	Operator Operator `json:"operator,omitempty"`

	// Result is the last captured or computed value (ResultValue).
	Result string `json:"result"`

	// Left and Right are the operands of the last evaluation.
	Left  string `json:"left,omitempty"`
	Right string `json:"right,omitempty"`

	// Err is set while the calculator is in the error state.
	Err ErrorKind `json:"error,omitempty"`

	// UpdatedAt is stamped by hosts when persisting.
	UpdatedAt time.Time `json:"updated_at,omitempty"`

	// Sealed carries an encrypted copy of the snapshot when the store
	// encrypts at rest. Calculation fields are empty in that case.
	Sealed string `json:"sealed,omitempty"`
}

// NewState creates a clean state for a session.
func NewState(sessionID string) *State {
	return &State{SessionID: sessionID}
}

// InError reports whether the calculator is in the error state.
func (s *State) InError() bool {
	return s.Err != ErrKindNone
}

// Reset returns every calculation field to empty, keeping the session identity.
func (s *State) Reset() {
	*s = State{SessionID: s.SessionID, UpdatedAt: s.UpdatedAt}
}

// Snapshot returns an independent copy of the state.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
