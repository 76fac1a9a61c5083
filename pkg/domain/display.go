package domain

import "strings"

// ErrorText is shown on both lines while the calculator is in the error state.
const ErrorText = "ERROR"

// Display holds the two lines rendered by the host.
type Display struct {
	Current string `json:"current"`
	Result  string `json:"result"`
	Error   bool   `json:"error,omitempty"`
}

// Render computes the display for a state.
func Render(s *State) Display {
	if s == nil {
		return Display{}
	}
	if s.InError() {
		return Display{Current: ErrorText, Result: ErrorText, Error: true}
	}
	return Display{Current: s.Entry, Result: FormatResult(s.Result)}
}

// FormatResult drops a trailing ".0" so integral results read naturally.
// Strings shorter than two characters are returned unchanged.
func FormatResult(result string) string {
	if len(result) >= 2 && strings.HasSuffix(result, ".0") {
		return result[:len(result)-2]
	}
	return result
}
