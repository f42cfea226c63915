package guard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/guard"
)

func children(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		_, _ = w.Write([]byte("private"))
	})
}

func TestAllow(t *testing.T) {
	require.True(t, guard.Allow(common.Session{Name: "alice"}))
	require.False(t, guard.Allow(common.Session{}))
	require.False(t, guard.Allow(common.Session{UserID: "u-1", Name: "   "}))
}

func TestGuardRendersChildrenForNamedUser(t *testing.T) {
	var called bool
	var results []string
	g := guard.Guard{
		RedirectTo: "/login",
		Observe:    func(r string) { results = append(results, r) },
	}
	handler := g.Middleware(children(&called))

	req := httptest.NewRequest(http.MethodGet, "/account", nil)
	req = req.WithContext(common.WithSession(req.Context(), common.Session{Name: "alice"}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.True(t, called)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "private", rr.Body.String())
	require.Empty(t, rr.Header().Get("Location"))
	require.Equal(t, []string{"allowed"}, results)
}

func TestGuardRedirectsAnonymous(t *testing.T) {
	var called bool
	handler := guard.Guard{RedirectTo: "/login"}.Middleware(children(&called))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/account", nil))

	require.False(t, called)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestGuardDefaultsToRoot(t *testing.T) {
	var called bool
	handler := guard.Guard{}.Middleware(children(&called))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/account", nil))

	require.False(t, called)
	require.Equal(t, "/", rr.Header().Get("Location"))
}

func TestGuardUsesInjectedResolver(t *testing.T) {
	var called bool
	g := guard.Guard{
		RedirectTo: "/login",
		Resolve: func(r *http.Request) common.Session {
			return common.Session{Name: r.Header.Get("X-Test-User")}
		},
	}
	handler := g.Middleware(children(&called))

	req := httptest.NewRequest(http.MethodGet, "/account", nil)
	req.Header.Set("X-Test-User", "bob")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.True(t, called)
}
