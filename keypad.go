package keypad

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/keypad/internal/logging"
	"github.com/aretw0/keypad/internal/runtime"
	"github.com/aretw0/keypad/pkg/domain"
)

// Version is the release of the keypad module.
//
//go:embed VERSION
var Version string

// Engine is the high-level entry point for the keypad library.
// It is stateless: every call takes a domain.State snapshot and returns a new one,
// so hosts decide where calculations live (memory, files, Redis...).
type Engine struct {
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	clock  func() time.Time
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides the time source used for UpdatedAt and event timestamps.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// New initializes a new keypad Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}
	// Ensure logger is initialized (so we don't pass nil to the runtime)
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.clock == nil {
		eng.clock = time.Now
	}
	return eng
}

// Start creates the empty state of a new calculation.
func (e *Engine) Start(ctx context.Context, sessionID string) *domain.State {
	state := domain.NewState(sessionID)
	state.UpdatedAt = e.clock()
	e.logger.Debug("Session started", "session_id", sessionID)
	return state
}

// Press applies keys to a copy of state and returns the new snapshot.
// Calculation errors are not returned: they are part of the returned state
// (see domain.State.InError). An error is only returned for a nil state or
// a cancelled context.
func (e *Engine) Press(ctx context.Context, state *domain.State, keys ...domain.Key) (*domain.State, error) {
	if state == nil {
		return nil, errors.New("state is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := runtime.NewMachine(
		runtime.WithState(state),
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithLogger(e.logger.With("session_id", state.SessionID)),
		runtime.WithClock(e.clock),
	)
	for _, k := range keys {
		m.Apply(ctx, k)
	}

	next := m.State()
	next.UpdatedAt = e.clock()
	return next, nil
}

// PressLine parses a line of key tokens (see domain.ParseKeys) and applies it.
func (e *Engine) PressLine(ctx context.Context, state *domain.State, line string) (*domain.State, error) {
	keys, err := domain.ParseKeys(line)
	if err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return e.Press(ctx, state, keys...)
}

// Display renders the two display lines of a state.
func (e *Engine) Display(state *domain.State) domain.Display {
	return domain.Render(state)
}
