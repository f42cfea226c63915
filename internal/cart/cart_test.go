package cart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &Store{Client: client, TTL: time.Hour}, mr
}

func TestStoreQuantityRoundTrip(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	_, ok, err := store.Quantity(ctx, "c1", "mug")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.SetQuantity(ctx, "c1", "mug", 9))
	qty, ok, err := store.Quantity(ctx, "c1", "mug")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 9, qty)
	require.Equal(t, time.Hour, mr.TTL("cart:c1"))

	mr.FastForward(30 * time.Minute)
	require.NoError(t, store.SetQuantity(ctx, "c1", "beans", 2))
	require.Equal(t, time.Hour, mr.TTL("cart:c1"))

	items, err := store.Items(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, map[string]int{"mug": 9, "beans": 2}, items)
}

func TestStoreRejectsBlankKeys(t *testing.T) {
	store, _ := newStore(t)
	require.ErrorIs(t, store.SetQuantity(context.Background(), "", "mug", 1), ErrInvalidInput)
	_, _, err := store.Quantity(context.Background(), "c1", " ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCookieEnsure(t *testing.T) {
	c := Cookie{Name: "cart", TTL: time.Hour}

	rec := httptest.NewRecorder()
	id := c.Ensure(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, id)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, id, cookies[0].Value)
	require.Equal(t, 3600, cookies[0].MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	require.Equal(t, id, c.Ensure(rec, req))
	require.Empty(t, rec.Result().Cookies())

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.AddCookie(&http.Cookie{Name: "cart", Value: "not-a-uuid"})
	require.Empty(t, c.ID(bad))
}
