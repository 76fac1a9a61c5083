package runner

import (
	"context"

	"github.com/aretw0/keypad/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents the display after a line of keys was applied.
	Output(ctx context.Context, sessionID string, display domain.Display) error

	// Input reads the next line from the user.
	// It returns io.EOF when the input is exhausted.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (help, parse errors).
	// Messages are markdown.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer is a function that transforms markdown before it is written.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
