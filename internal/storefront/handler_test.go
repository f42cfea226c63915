package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/guard"
	"github.com/noah-isme/toko-storefront/internal/notify"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/quantity"
	"github.com/noah-isme/toko-storefront/internal/web"
)

type fixture struct {
	router  http.Handler
	carts   *cart.Store
	metrics *obs.DomainMetrics
	session *common.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	products, err := catalog.NewService(catalog.ServiceConfig{
		Repository: catalog.NewFileRepository([]catalog.Product{
			{Slug: "coffee-beans", Title: "Coffee beans", Price: decimal.RequireFromString("7.77")},
			{Slug: "ceramic-mug", Title: "Ceramic mug", Price: decimal.RequireFromString("12.50")},
		}),
	})
	require.NoError(t, err)

	f := &fixture{
		carts:   &cart.Store{Client: client, TTL: time.Hour},
		metrics: obs.NewDomainMetrics("test", prometheus.NewRegistry()),
	}
	h := &Handler{
		Products:   products,
		Carts:      f.carts,
		CartCookie: cart.Cookie{Name: "cart"},
		Bounds:     quantity.Range(1, 42),
		Renderer:   web.MustRenderer(zerolog.Nop()),
		Guard:      guard.Guard{RedirectTo: "/login"},
		Metrics:    f.metrics,
		Featured:   []string{"coffee-beans", "gone"},
	}
	r := chi.NewRouter()
	r.Use(notify.Middleware)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if f.session != nil {
				r = r.WithContext(common.WithSession(r.Context(), *f.session))
			}
			next.ServeHTTP(w, r)
		})
	})
	h.Mount(r)
	r.Route("/api/v1", h.MountAPI)
	f.router = r
	return f
}

func (f *fixture) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func commitReq(count string) *http.Request {
	form := url.Values{"count": {count}}
	req := httptest.NewRequest(http.MethodPost, "/products/coffee-beans/count", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestProductPageRendersFreshCart(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/products/coffee-beans", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Count, units:")
	require.Contains(t, body, `min="1" max="42" value="1"`)
	require.Contains(t, body, "Total price: ")
	require.Contains(t, body, "$7.77")
}

func TestCommitStoresCountAndRedirects(t *testing.T) {
	f := newFixture(t)

	rec := f.do(commitReq("9"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/products/coffee-beans", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	page := f.do(httptest.NewRequest(http.MethodGet, "/products/coffee-beans", nil), cookies...)
	require.Contains(t, page.Body.String(), `max="42" value="9"`)
	require.Contains(t, page.Body.String(), "$69.93")
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.QuantityChanges.WithLabelValues(obs.ResultAccepted)))
}

func TestCommitRejectionKeepsStoredCount(t *testing.T) {
	f := newFixture(t)
	cookies := f.do(commitReq("9")).Result().Cookies()

	for _, raw := range []string{"43", "0", "2.5", "abc"} {
		rec := f.do(commitReq(raw), cookies...)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, raw)
		body := rec.Body.String()
		require.Contains(t, body, "Please enter an integer value from 1 to 42 inclusive!", raw)
		require.Contains(t, body, `role="alert"`)
		require.Contains(t, body, `max="42" value="9"`, raw)
		require.Contains(t, body, "$69.93", raw)
	}
	require.Equal(t, 4.0, testutil.ToFloat64(f.metrics.QuantityChanges.WithLabelValues(obs.ResultRejected)))
}

func TestNonPositiveStoredCountRendersEmptyField(t *testing.T) {
	f := newFixture(t)
	cookies := f.do(commitReq("3")).Result().Cookies()
	require.NoError(t, f.carts.SetQuantity(context.Background(), cookies[0].Value, "coffee-beans", 0))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/products/coffee-beans", nil), cookies...)
	require.Contains(t, rec.Body.String(), `max="42" value=""`)
	require.Contains(t, rec.Body.String(), "$0.00")
}

func TestUnknownProduct(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/products/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHomeListsFeaturedProducts(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `href="/products/coffee-beans"`)
	require.NotContains(t, rec.Body.String(), "/products/gone")
}

func postQuote(f *fixture, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quantity/quote", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := f.do(req)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestQuote(t *testing.T) {
	f := newFixture(t)

	rec, out := postQuote(f, `{"value":"9","price":"7.77"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, map[string]any{"count": float64(9), "field": "9", "total": "69.93"}, out)

	rec, out = postQuote(f, `{"value":"43","price":"7.77"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errBody := out["error"].(map[string]any)
	require.Equal(t, "OUT_OF_RANGE", errBody["code"])
	require.Equal(t, "Please enter an integer value from 1 to 42 inclusive!", errBody["message"])

	rec, out = postQuote(f, `{"value":"6","price":"1","min":2,"max":5}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	details := out["error"].(map[string]any)["details"].(map[string]any)
	require.Equal(t, map[string]any{"min": "2", "max": "5"}, details)

	rec, out = postQuote(f, `{"value":"100000","price":"0.01","min":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "1000.00", out["total"])
}

func TestQuoteHonoursExplicitZeroRange(t *testing.T) {
	f := newFixture(t)

	rec, out := postQuote(f, `{"value":"5","price":"1","min":0,"max":0}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errBody := out["error"].(map[string]any)
	require.Equal(t, "Please enter an integer value from 0 to 0 inclusive!", errBody["message"])
	require.Equal(t, map[string]any{"min": "0", "max": "0"}, errBody["details"])

	rec, out = postQuote(f, `{"value":"0","price":"1","min":0,"max":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, map[string]any{"count": float64(0), "field": "", "total": "0.00"}, out)
}

func TestQuoteRejectsBadRequests(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{
		`{"value":"1"}`,
		`{"value":"1","price":"cheap"}`,
		`{"value":"1","price":"1","min":5,"max":2}`,
		`{"value":"1","price":"1","extra":true}`,
		`not json`,
	} {
		rec, _ := postQuote(f, body)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestAccountIsGuarded(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/account", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
	require.NotContains(t, rec.Body.String(), "Your account")

	f.session = &common.Session{UserID: "u1", Name: "Alice"}
	rec = f.do(httptest.NewRequest(http.MethodGet, "/account", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Signed in as <strong>Alice</strong>")

	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AccessGuard.WithLabelValues(obs.ResultRedirected)))
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AccessGuard.WithLabelValues(obs.ResultAllowed)))
}

func TestAccountSummarisesCart(t *testing.T) {
	f := newFixture(t)
	f.session = &common.Session{UserID: "u1", Name: "Alice"}
	cookies := f.do(commitReq("9")).Result().Cookies()
	cartID := cookies[0].Value
	require.NoError(t, f.carts.SetQuantity(context.Background(), cartID, "ceramic-mug", 2))
	require.NoError(t, f.carts.SetQuantity(context.Background(), cartID, "gone", 5))
	require.NoError(t, f.carts.SetQuantity(context.Background(), cartID, "coffee-filter", 0))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/account", nil), cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `<td><a href="/products/ceramic-mug">Ceramic mug</a></td><td>2</td><td>$12.50</td><td>$25.00</td>`)
	require.Contains(t, body, `<td><a href="/products/coffee-beans">Coffee beans</a></td><td>9</td><td>$7.77</td><td>$69.93</td>`)
	require.Less(t, strings.Index(body, "Ceramic mug"), strings.Index(body, "Coffee beans"))
	require.NotContains(t, body, "/products/gone")
	require.NotContains(t, body, "coffee-filter")
	require.Contains(t, body, "Cart total: <strong>$94.93</strong>")
}

func TestAccountWithoutCart(t *testing.T) {
	f := newFixture(t)
	f.session = &common.Session{UserID: "u1", Name: "Alice"}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/account", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Your cart is empty.")
	require.Contains(t, rec.Body.String(), "Cart total: <strong>$0.00</strong>")
}

func TestStartingQuantity(t *testing.T) {
	require.Equal(t, 1, startingQuantity(quantity.Bounds{}))
	require.Equal(t, 1, startingQuantity(quantity.Range(-5, 10)))
	require.Equal(t, 3, startingQuantity(quantity.Range(2.5, 10)))
}
