package runner

import (
	"context"

	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
)

// RichResponse combines state and display for rich clients (HTTP, MCP).
type RichResponse struct {
	State   *domain.State  `json:"state"`
	Display domain.Display `json:"display"`
}

// PressAndRender applies keys and renders the resulting state in one step.
func PressAndRender(ctx context.Context, engine ports.Engine, state *domain.State, keys ...domain.Key) (*RichResponse, error) {
	next, err := engine.Press(ctx, state, keys...)
	if err != nil {
		return nil, err
	}
	return Render(engine, next), nil
}

// Render wraps a state and its display.
func Render(engine ports.Engine, state *domain.State) *RichResponse {
	return &RichResponse{State: state, Display: engine.Display(state)}
}
