package ports

import (
	"context"

	"github.com/aretw0/keypad/pkg/domain"
)

// Engine defines the calculator core as seen by adapters.
// Implementations keep no session state; it travels in domain.State.
type Engine interface {
	// Start creates the empty state for a new session.
	Start(ctx context.Context, sessionID string) *domain.State

	// Press applies keys to a state and returns the next state.
	Press(ctx context.Context, state *domain.State, keys ...domain.Key) (*domain.State, error)

	// Display renders the two display lines for a state.
	Display(state *domain.State) domain.Display
}
