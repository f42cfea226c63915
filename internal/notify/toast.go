package notify

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/noah-isme/toko-storefront/internal/common"
)

// Level classifies a toast for rendering.
type Level string

const LevelError Level = "error"

// Toast is a single message queued for display.
type Toast struct {
	Level   Level
	Message string
}

// Toasts collects messages raised while serving one request.
type Toasts struct {
	mu    sync.Mutex
	items []Toast
}

type toastsKey struct{}

// WithToasts attaches a fresh collector to ctx.
func WithToasts(ctx context.Context) (context.Context, *Toasts) {
	t := &Toasts{}
	return context.WithValue(ctx, toastsKey{}, t), t
}

// FromContext returns the collector stored on ctx, or nil.
func FromContext(ctx context.Context) *Toasts {
	if ctx == nil {
		return nil
	}
	t, _ := ctx.Value(toastsKey{}).(*Toasts)
	return t
}

// Middleware gives every request its own toast collector.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := WithToasts(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Add queues a message.
func (t *Toasts) Add(level Level, message string) {
	if t == nil {
		return
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	t.mu.Lock()
	t.items = append(t.items, Toast{Level: level, Message: message})
	t.mu.Unlock()
}

// Items returns a copy of the queued messages.
func (t *Toasts) Items() []Toast {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Toast, len(t.items))
	copy(out, t.items)
	return out
}

// ContextToasts is a Notifier writing into the request's collector.
type ContextToasts struct{}

// Error implements Notifier.
func (ContextToasts) Error(ctx context.Context, message string) {
	FromContext(ctx).Add(LevelError, message)
}

func sessionName(ctx context.Context) string {
	return strings.TrimSpace(common.SessionFrom(ctx).Name)
}
