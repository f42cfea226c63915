package notify

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Notifier surfaces user-visible messages outside the component that raised them.
type Notifier interface {
	Error(ctx context.Context, message string)
}

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, message string)

// Error implements Notifier.
func (f Func) Error(ctx context.Context, message string) {
	if f != nil {
		f(ctx, message)
	}
}

// Multi fans a message out to every configured notifier.
type Multi []Notifier

// Error implements Notifier.
func (m Multi) Error(ctx context.Context, message string) {
	for _, n := range m {
		if n != nil {
			n.Error(ctx, message)
		}
	}
}

// LogNotifier records surfaced messages as structured warnings.
type LogNotifier struct {
	Logger zerolog.Logger
	Source string
}

// Error implements Notifier.
func (l LogNotifier) Error(ctx context.Context, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	evt := l.Logger.Warn().Str("kind", "toast")
	if l.Source != "" {
		evt = evt.Str("source", l.Source)
	}
	if sess := sessionName(ctx); sess != "" {
		evt = evt.Str("user", sess)
	}
	evt.Msg(message)
}
