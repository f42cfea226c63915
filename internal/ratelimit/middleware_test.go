package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/common"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestHandlerMiddlewareEnforcesLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	lim, err := New(client, "1-M", "test")
	require.NoError(t, err)
	counted := Handler{Limiter: lim, Key: func(*http.Request) string { return "static" }}.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/products/mug/count", nil)
	rr1 := httptest.NewRecorder()
	counted.ServeHTTP(rr1, req.Clone(req.Context()))
	require.Equal(t, http.StatusOK, rr1.Code)

	rr2 := httptest.NewRecorder()
	counted.ServeHTTP(rr2, req.Clone(req.Context()))
	require.Equal(t, http.StatusTooManyRequests, rr2.Code)
	require.Equal(t, "1", rr2.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "0", rr2.Header().Get("X-RateLimit-Remaining"))
	require.NotEmpty(t, rr2.Header().Get("Retry-After"))
}

func TestHandlerMiddlewareOnError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	lim, err := New(client, "1-S", "")
	require.NoError(t, err)
	mr.Close()

	called := false
	counted := Handler{Limiter: lim, OnError: func(error) { called = true }}.Middleware(okHandler())

	rr := httptest.NewRecorder()
	counted.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, called)
}

func TestMemoryStoreAndSessionKey(t *testing.T) {
	lim, err := New(nil, "2-H", "")
	require.NoError(t, err)
	counted := Handler{Limiter: lim}.Middleware(okHandler())

	anon := httptest.NewRequest(http.MethodPost, "/", nil)
	anon.RemoteAddr = "10.0.0.1:1234"
	signedIn := anon.WithContext(common.WithSession(anon.Context(), common.Session{UserID: "u1", Name: "Alice"}))
	require.Equal(t, "ip:10.0.0.1", KeyBySession(anon))
	require.Equal(t, "user:u1", KeyBySession(signedIn))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		counted.ServeHTTP(rr, anon)
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr := httptest.NewRecorder()
	counted.ServeHTTP(rr, anon)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	rr = httptest.NewRecorder()
	counted.ServeHTTP(rr, signedIn)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestNewRejectsBadRate(t *testing.T) {
	_, err := New(nil, "lots", "")
	require.Error(t, err)
}
