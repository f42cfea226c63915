package common

import (
	"context"
	"strings"
)

type ctxKey string

const sessionKey ctxKey = "auth/session"

// Session is the authentication state attached to a request.
// The zero value is an anonymous visitor.
type Session struct {
	UserID  string
	Name    string
	TokenID string
}

// LoggedIn reports whether the session belongs to a named user.
func (s Session) LoggedIn() bool {
	return strings.TrimSpace(s.Name) != ""
}

// WithSession stores the session on the provided context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom extracts the session from the context. Missing sessions are anonymous.
func SessionFrom(ctx context.Context) Session {
	if ctx == nil {
		return Session{}
	}
	s, _ := ctx.Value(sessionKey).(Session)
	return s
}
