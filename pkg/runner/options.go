package runner

import (
	"log/slog"

	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore configures the StateStore for persistence.
func WithStore(store ports.StateStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithSessionID sets the session ID used for persistence.
// This is required if WithStore is used.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithEngine configures the engine that applies keys.
func WithEngine(engine ports.Engine) Option {
	return func(r *Runner) {
		r.engine = engine
	}
}

// WithInitialState starts the loop from state instead of loading or creating one.
func WithInitialState(state *domain.State) Option {
	return func(r *Runner) {
		r.initialState = state
	}
}

// WithSignalHandling makes the loop stop on SIGINT/SIGTERM.
func WithSignalHandling() Option {
	return func(r *Runner) {
		r.handleSignals = true
	}
}
