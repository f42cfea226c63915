package guard

import (
	"net/http"
	"strings"

	"github.com/noah-isme/toko-storefront/internal/common"
)

// DefaultRedirect is where anonymous visitors are sent when no target is set.
const DefaultRedirect = "/"

// Resolver returns the session a request is made under.
type Resolver func(*http.Request) common.Session

// Guard serves private content to named users and redirects everyone else.
type Guard struct {
	RedirectTo string
	Resolve    Resolver
	// Observe, when set, receives "allowed" or "redirected" for each request.
	Observe func(result string)
}

// Allow reports whether the session may see private content.
func Allow(s common.Session) bool {
	return s.LoggedIn()
}

// Target returns the redirect destination.
func (g Guard) Target() string {
	target := strings.TrimSpace(g.RedirectTo)
	if target == "" {
		return DefaultRedirect
	}
	return target
}

// Middleware wraps the private handler.
func (g Guard) Middleware(next http.Handler) http.Handler {
	resolve := g.Resolve
	if resolve == nil {
		resolve = func(r *http.Request) common.Session { return common.SessionFrom(r.Context()) }
	}
	target := g.Target()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Allow(resolve(r)) {
			g.observe("allowed")
			next.ServeHTTP(w, r)
			return
		}
		g.observe("redirected")
		http.Redirect(w, r, target, http.StatusSeeOther)
	})
}

func (g Guard) observe(result string) {
	if g.Observe != nil {
		g.Observe(result)
	}
}
