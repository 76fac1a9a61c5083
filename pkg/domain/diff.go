package domain

// DisplayDiff represents the changes between two displays of the same session.
// It is serialized to JSON for push updates (SSE).
type DisplayDiff struct {
	SessionID string  `json:"session_id"`
	Current   *string `json:"current,omitempty"`
	Result    *string `json:"result,omitempty"`
	Error     *bool   `json:"error,omitempty"`
}

// Diff calculates the difference between two displays.
// If old is nil, the diff carries every field of next (initial load).
// It returns nil when nothing changed.
func Diff(sessionID string, old *Display, next Display) *DisplayDiff {
	diff := &DisplayDiff{SessionID: sessionID}

	if old == nil || old.Current != next.Current {
		diff.Current = &next.Current
	}
	if old == nil || old.Result != next.Result {
		diff.Result = &next.Result
	}
	if old == nil || old.Error != next.Error {
		diff.Error = &next.Error
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any change.
func (d *DisplayDiff) IsEmpty() bool {
	return d.Current == nil && d.Result == nil && d.Error == nil
}
