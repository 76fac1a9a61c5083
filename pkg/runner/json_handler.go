package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/keypad/pkg/domain"
)

// Message types written by JSONHandler.
const (
	MessageDisplay = "display"
	MessageSystem  = "system"
)

// Message is one line of JSONHandler output.
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Display   *domain.Display `json:"display,omitempty"`
	Text      string          `json:"text,omitempty"`
}

// keysRequest is the object form accepted on input: {"keys": "12+3="}.
type keysRequest struct {
	Keys string `json:"keys"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
type JSONHandler struct {
	Writer  io.Writer
	Encoder *json.Encoder

	pump *linePump
}

// JSONHandlerOption defines configuration for JSONHandler.
type JSONHandlerOption func(*JSONHandler)

// WithJSONHandlerInput reads lines from r.
func WithJSONHandlerInput(r io.Reader) JSONHandlerOption {
	return func(h *JSONHandler) {
		h.pump.start(r)
	}
}

// NewJSONHandler creates a handler for JSON IO. A nil writer discards output.
func NewJSONHandler(w io.Writer, opts ...JSONHandlerOption) *JSONHandler {
	if w == nil {
		w = io.Discard
	}
	h := &JSONHandler{
		Writer:  w,
		Encoder: json.NewEncoder(w),
		pump:    newLinePump(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewStdioJSONHandler wires the handler to the process stdin/stdout.
func NewStdioJSONHandler() *JSONHandler {
	return NewJSONHandler(os.Stdout, WithJSONHandlerInput(os.Stdin))
}

// FeedInput injects a line as if it had been received.
func (h *JSONHandler) FeedInput(text string, err error) {
	h.pump.feed(text, err)
}

func (h *JSONHandler) Output(ctx context.Context, sessionID string, display domain.Display) error {
	return h.Encoder.Encode(Message{Type: MessageDisplay, SessionID: sessionID, Display: &display})
}

// Input accepts a JSON string ("12+3="), an object ({"keys": "12+3="}) or raw text.
// Unlike TextHandler, invalid input is returned as an error instead of retried.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.pump.next(ctx)
	if err != nil {
		return "", err
	}
	clean, err := SanitizeInput(text)
	if err != nil {
		return "", err
	}

	switch {
	case strings.HasPrefix(clean, `"`):
		var s string
		if err := json.Unmarshal([]byte(clean), &s); err == nil {
			return s, nil
		}
	case strings.HasPrefix(clean, "{"):
		var req keysRequest
		if err := json.Unmarshal([]byte(clean), &req); err == nil {
			return req.Keys, nil
		}
	}
	return clean, nil
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Message{Type: MessageSystem, Text: msg})
}
