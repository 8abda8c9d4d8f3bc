package statemachine

import (
	"context"
	"log/slog"

	"github.com/amp-labs/amp-fsm/logger"
)

// Logger observes a machine's transitions. Implementations must not block for
// long; they run on the goroutine calling Fire.
type Logger interface {
	TransitionFired(ctx context.Context, machine, transition, from, to string)
	TransitionRejected(ctx context.Context, machine, transition, current string, err error)
	HookFailed(ctx context.Context, machine, transition, state string, err error)
}

// DefaultLogger implements Logger using slog.
type DefaultLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger creates a logger that resolves the slog logger from the
// context on every call, so values added with logger.With are included.
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{}
}

// NewSlogLogger creates a logger that always writes to l.
func NewSlogLogger(l *slog.Logger) *DefaultLogger {
	return &DefaultLogger{logger: l}
}

func (l *DefaultLogger) get(ctx context.Context) *slog.Logger {
	if l.logger != nil {
		return l.logger
	}

	return logger.Get(ctx)
}

func (l *DefaultLogger) TransitionFired(ctx context.Context, machine, transition, from, to string) {
	l.get(ctx).InfoContext(ctx, "Transition fired",
		"machine", machine,
		"transition", transition,
		"from", from,
		"to", to,
	)
}

func (l *DefaultLogger) TransitionRejected(ctx context.Context, machine, transition, current string, err error) {
	l.get(ctx).WarnContext(ctx, "Transition rejected",
		"machine", machine,
		"transition", transition,
		"current", current,
		"error", err,
	)
}

func (l *DefaultLogger) HookFailed(ctx context.Context, machine, transition, state string, err error) {
	l.get(ctx).ErrorContext(ctx, "Transition hook failed",
		"machine", machine,
		"transition", transition,
		"state", state,
		"error", err,
	)
}
