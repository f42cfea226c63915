package security

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/noah-isme/toko-storefront/internal/common"
)

const (
	defaultCSRFName  = "X-CSRF-Token"
	defaultCSRFField = "csrf_token"
)

type csrfKey struct{}

// CSRF protects cookie-based flows using the double-submit technique. Safe
// requests receive the cookie; unsafe ones must echo it back in the header
// or the form field.
type CSRF struct {
	Header string
	Field  string
	Secure bool
}

// CSRFToken returns the token issued for the current request.
func CSRFToken(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	token, _ := ctx.Value(csrfKey{}).(string)
	return token
}

// Middleware enforces the double-submit check.
func (c CSRF) Middleware(next http.Handler) http.Handler {
	name := strings.TrimSpace(c.Header)
	if name == "" {
		name = defaultCSRFName
	}
	field := strings.TrimSpace(c.Field)
	if field == "" {
		field = defaultCSRFField
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookieValue := ""
		if cookie, err := r.Cookie(name); err == nil {
			cookieValue = strings.TrimSpace(cookie.Value)
		}

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			if cookieValue == "" {
				cookieValue = newToken()
				http.SetCookie(w, &http.Cookie{
					Name:     name,
					Value:    cookieValue,
					Path:     "/",
					HttpOnly: true,
					Secure:   c.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), csrfKey{}, cookieValue)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		auth := strings.TrimSpace(r.Header.Get("Authorization"))
		if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimSpace(r.Header.Get(name))
		if token == "" {
			token = strings.TrimSpace(r.PostFormValue(field))
		}
		if token == "" {
			common.JSONError(w, http.StatusForbidden, "CSRF", "missing csrf token", nil)
			return
		}
		if cookieValue == "" {
			common.JSONError(w, http.StatusForbidden, "CSRF", "missing csrf cookie", nil)
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(cookieValue)) != 1 {
			common.JSONError(w, http.StatusForbidden, "CSRF", "invalid csrf token", nil)
			return
		}

		ctx := context.WithValue(r.Context(), csrfKey{}, cookieValue)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
