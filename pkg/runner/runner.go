package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/keypad/internal/logging"
	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
)

// HelpMarkdown documents the input syntax; it is shown by the help command.
const HelpMarkdown = "# keypad\n\n" +
	"Type keys separated by spaces, or run them together: `12+3=`.\n\n" +
	"| Key | Meaning |\n" +
	"|---|---|\n" +
	"| `0`-`9`, `.` | enter a number |\n" +
	"| `+` `-` `*` `/` | choose the operator, evaluating any pending one |\n" +
	"| `=` | evaluate |\n" +
	"| `neg` | put a minus sign in front of the entry |\n" +
	"| `c` | clear everything, including ERROR |\n\n" +
	"Commands: `help`, `exit`.\n"

// Runner handles the read, press, display loop of the keypad engine.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler on stdin/stdout is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Store is the persistence adapter. If nil, sessions are ephemeral.
	Store ports.StateStore

	// SessionID names the session in Store.
	SessionID string

	engine        ports.Engine
	initialState  *domain.State
	handleSignals bool
}

// NewRunner creates a Runner configured by opts.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// Run executes the loop until the input ends, the user exits or ctx is cancelled.
// It returns the last state, which is also the persisted one when a Store is set.
// Cancellation is reported as ctx.Err() together with that state.
func (r *Runner) Run(ctx context.Context) (*domain.State, error) {
	if r.engine == nil {
		return nil, errors.New("runner: engine is required")
	}
	handler := r.resolveHandler()

	if r.handleSignals {
		signals := NewSignalManager(ctx)
		defer signals.Stop()
		ctx = signals.Context()
		return r.loop(ctx, handler, signals)
	}
	return r.loop(ctx, handler, nil)
}

func (r *Runner) loop(ctx context.Context, handler IOHandler, signals *SignalManager) (*domain.State, error) {
	state, err := r.resolveInitialState(ctx)
	if err != nil {
		return nil, err
	}
	if err := handler.Output(ctx, r.SessionID, r.engine.Display(state)); err != nil {
		return state, fmt.Errorf("output error: %w", err)
	}

	for {
		line, err := handler.Input(ctx)
		if err != nil {
			if signals != nil {
				signals.CheckRace()
			}
			switch {
			case ctx.Err() != nil:
				r.Logger.Debug("Runner input: context cancelled", "err", ctx.Err())
				return state, ctx.Err()
			case errors.Is(err, io.EOF):
				return state, nil
			case errors.Is(err, ErrInputTooLarge), errors.Is(err, ErrInvalidUTF8):
				if err := handler.SystemOutput(ctx, "Error: "+err.Error()); err != nil {
					return state, fmt.Errorf("output error: %w", err)
				}
				continue
			default:
				return state, fmt.Errorf("input error: %w", err)
			}
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return state, nil
		case "help", "?":
			if err := handler.SystemOutput(ctx, HelpMarkdown); err != nil {
				return state, fmt.Errorf("output error: %w", err)
			}
			continue
		}

		keys, err := domain.ParseKeys(line)
		if err != nil {
			r.Logger.Debug("Runner input: rejected line", "line", line, "err", err)
			if err := handler.SystemOutput(ctx, "Error: "+err.Error()+". Type `help` for the key syntax."); err != nil {
				return state, fmt.Errorf("output error: %w", err)
			}
			continue
		}

		next, err := r.engine.Press(ctx, state, keys...)
		if err != nil {
			return state, fmt.Errorf("press error: %w", err)
		}
		if err := r.saveState(ctx, next); err != nil {
			return state, fmt.Errorf("critical persistence error: %w", err)
		}
		state = next

		if err := handler.Output(ctx, r.SessionID, r.engine.Display(state)); err != nil {
			return state, fmt.Errorf("output error: %w", err)
		}
	}
}

func (r *Runner) saveState(ctx context.Context, state *domain.State) error {
	if r.Store == nil || r.SessionID == "" {
		return nil
	}
	if err := r.Store.Save(ctx, r.SessionID, state); err != nil {
		return err
	}
	r.Logger.Debug("state saved", "session_id", r.SessionID, "in_error", state.InError())
	return nil
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, WithTextHandlerInput(os.Stdin))
	}
	return r.Handler
}

// resolveInitialState prefers an explicit state, then the stored session, then a new one.
func (r *Runner) resolveInitialState(ctx context.Context) (*domain.State, error) {
	if r.initialState != nil {
		return r.initialState, nil
	}
	if r.Store != nil && r.SessionID != "" {
		state, err := r.Store.Load(ctx, r.SessionID)
		if err == nil {
			r.Logger.Debug("session resumed", "session_id", r.SessionID)
			return state, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, fmt.Errorf("failed to load session %s: %w", r.SessionID, err)
		}
	}
	return r.engine.Start(ctx, r.SessionID), nil
}
