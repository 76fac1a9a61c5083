package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/keypad/pkg/domain"
)

// Combine fans every event out to each hook set, in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnKey: func(ctx context.Context, e *domain.KeyEvent) {
			for _, h := range sets {
				if h.OnKey != nil {
					h.OnKey(ctx, e)
				}
			}
		},
		OnEvaluate: func(ctx context.Context, e *domain.EvaluateEvent) {
			for _, h := range sets {
				if h.OnEvaluate != nil {
					h.OnEvaluate(ctx, e)
				}
			}
		},
		OnError: func(ctx context.Context, e *domain.ErrorEvent) {
			for _, h := range sets {
				if h.OnError != nil {
					h.OnError(ctx, e)
				}
			}
		},
		OnClear: func(ctx context.Context, e *domain.EventBase) {
			for _, h := range sets {
				if h.OnClear != nil {
					h.OnClear(ctx, e)
				}
			}
		},
	}
}

// LogHooks logs evaluations at Debug and errors at Info.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEvaluate: func(ctx context.Context, e *domain.EvaluateEvent) {
			logger.DebugContext(ctx, "evaluate",
				"session_id", e.SessionID,
				"left", e.Left,
				"operator", string(e.Operator),
				"right", e.Right,
				"result", e.Result,
			)
		},
		OnError: func(ctx context.Context, e *domain.ErrorEvent) {
			logger.InfoContext(ctx, "calculator_error",
				"session_id", e.SessionID,
				"kind", string(e.Kind),
				"err", e.Err,
			)
		},
	}
}
