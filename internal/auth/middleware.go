package auth

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/common"
)

// Middleware wires the session into HTTP handlers.
type Middleware struct {
	Service       *Service
	SessionCookie string
	Logger        *zerolog.Logger
}

// Authenticate attaches the session to the request context. Requests without
// a valid token continue as anonymous visitors.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Service == nil {
			next.ServeHTTP(w, r)
			return
		}
		token := m.extractToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		session, err := m.Service.Parse(r.Context(), token)
		if err != nil {
			if m.Logger != nil && !common.IsAppError(err) {
				m.Logger.Error().Err(err).Msg("resolve session")
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(common.WithSession(r.Context(), session)))
	})
}

func (m Middleware) extractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if m.SessionCookie != "" {
		if cookie, err := r.Cookie(m.SessionCookie); err == nil {
			if value := strings.TrimSpace(cookie.Value); value != "" {
				return value
			}
		}
	}
	return ""
}
