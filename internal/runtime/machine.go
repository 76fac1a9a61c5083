package runtime

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/keypad/internal/evaluator"
	"github.com/aretw0/keypad/internal/logging"
	"github.com/aretw0/keypad/pkg/domain"
)

// Machine is the input state machine of the calculator.
// It owns one domain.State and mutates it only in response to keys.
// A Machine is not safe for concurrent use.
type Machine struct {
	state  domain.State
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = hooks
	}
}

// WithState restores the machine from a snapshot.
func WithState(s *domain.State) Option {
	return func(m *Machine) {
		if s != nil {
			m.state = *s
		}
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// NewMachine creates a machine with an empty entry, no pending operator and no result.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// HandleKey consumes one key event.
func (m *Machine) HandleKey(k domain.Key) {
	m.Apply(context.Background(), k)
}

// Apply consumes one key event; ctx is handed to the lifecycle hooks.
// Calculation errors never escape: they put the machine into the error state,
// where every key but Clear is ignored.
func (m *Machine) Apply(ctx context.Context, k domain.Key) {
	if err := k.Validate(); err != nil {
		m.logger.Warn("Ignoring invalid key", "key", k, "err", err)
		return
	}

	ignored := m.state.InError() && k.Kind != domain.KeyClear
	if m.hooks.OnKey != nil {
		m.hooks.OnKey(ctx, &domain.KeyEvent{
			EventBase: m.event(domain.EventKey),
			Key:       k,
			Ignored:   ignored,
		})
	}
	if ignored {
		m.logger.Debug("Key ignored in error state", "key", k.String())
		return
	}

	switch k.Kind {
	case domain.KeyDigit:
		m.appendEntry(ctx, k.String())
	case domain.KeyDot:
		if strings.Contains(m.state.Entry, ".") {
			m.fail(ctx, domain.ErrInvalidSecondDecimalPoint)
			return
		}
		m.appendEntry(ctx, ".")
	case domain.KeyNegate:
		// Prepends rather than toggles: "--5" is a reachable entry.
		m.state.Entry = "-" + m.state.Entry
		if len(m.state.Entry) > domain.MaxEntryLength {
			m.fail(ctx, domain.ErrEntryTooLong)
			return
		}
	case domain.KeyClear:
		m.state.Reset()
		if m.hooks.OnClear != nil {
			ev := m.event(domain.EventClear)
			m.hooks.OnClear(ctx, &ev)
		}
	case domain.KeyOperator:
		m.commit(ctx, k.Op)
	case domain.KeyEquals:
		m.commit(ctx, domain.OpNone)
	}

	m.logger.Debug("Key handled",
		"key", k.String(),
		"entry", m.state.Entry,
		"operator", string(m.state.Operator),
		"result", m.state.Result,
	)
}

// Display returns the two display lines without changing state.
func (m *Machine) Display() domain.Display {
	return domain.Render(&m.state)
}

// State returns a copy of the current snapshot.
func (m *Machine) State() *domain.State {
	return m.state.Snapshot()
}

// InError reports whether the machine is in the error state.
func (m *Machine) InError() bool {
	return m.state.InError()
}

func (m *Machine) appendEntry(ctx context.Context, s string) {
	m.state.Entry += s
	if len(m.state.Entry) > domain.MaxEntryLength {
		m.fail(ctx, domain.ErrEntryTooLong)
	}
}

// commit applies an operator (next) or Equals (next == OpNone).
func (m *Machine) commit(ctx context.Context, next domain.Operator) {
	s := &m.state

	if s.Operator != domain.OpNone {
		if !isCompleteOperand(s.Entry) || s.Result == "" {
			m.fail(ctx, domain.ErrIncompleteOperand)
			return
		}
		s.Left, s.Right = s.Result, s.Entry

		result, err := evaluator.Apply(s.Left, s.Right, s.Operator)
		if m.hooks.OnEvaluate != nil {
			m.hooks.OnEvaluate(ctx, &domain.EvaluateEvent{
				EventBase: m.event(domain.EventEvaluate),
				Left:      s.Left,
				Right:     s.Right,
				Operator:  s.Operator,
				Result:    result,
			})
		}
		if err != nil {
			m.fail(ctx, err)
			return
		}
		s.Result = result
	} else {
		if s.Entry == "" && s.Result == "" && next != domain.OpNone {
			m.fail(ctx, domain.ErrIncompleteOperand)
			return
		}
		// The entry is captured as typed, even when empty.
		s.Result = s.Entry
	}

	s.Entry = ""
	s.Operator = next
}

func (m *Machine) fail(ctx context.Context, err error) {
	m.state.Err = domain.KindOf(err)
	m.logger.Warn("Calculator entered error state",
		"kind", string(m.state.Err),
		"entry", m.state.Entry,
		"result", m.state.Result,
		"err", err,
	)
	if m.hooks.OnError != nil {
		m.hooks.OnError(ctx, &domain.ErrorEvent{
			EventBase: m.event(domain.EventError),
			Kind:      m.state.Err,
			Err:       err,
		})
	}
}

func (m *Machine) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: m.now(),
		Type:      t,
		SessionID: m.state.SessionID,
	}
}

func isCompleteOperand(entry string) bool {
	return entry != "" && entry != "." && entry != "-"
}
