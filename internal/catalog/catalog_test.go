package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/resilience"
)

const seedYAML = `
products:
  - slug: Coffee-Beans
    title: Coffee beans
    price: "7.77"
  - slug: mug
    title: Mug
    price: "12.50"
`

type countingRepo struct {
	inner catalog.Repository
	calls int
}

func (r *countingRepo) FindBySlug(ctx context.Context, slug string) (catalog.Product, error) {
	r.calls++
	return r.inner.FindBySlug(ctx, slug)
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestDecodeSeed(t *testing.T) {
	products, err := catalog.DecodeSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "coffee-beans", products[0].Slug)
	require.True(t, products[0].Price.Equal(decimal.RequireFromString("7.77")))

	_, err = catalog.DecodeSeed(strings.NewReader("products:\n  - slug: x\n    price: cheap\n"))
	require.Error(t, err)

	_, err = catalog.DecodeSeed(strings.NewReader("products:\n  - title: nameless\n    price: \"1\"\n"))
	require.Error(t, err)
}

func TestServiceCachesProducts(t *testing.T) {
	products, err := catalog.DecodeSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	repo := &countingRepo{inner: catalog.NewFileRepository(products)}
	svc, err := catalog.NewService(catalog.ServiceConfig{
		Repository: repo,
		Cache:      catalog.NewCache(newRedis(t), time.Minute),
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		p, err := svc.Product(context.Background(), " COFFEE-beans ")
		require.NoError(t, err)
		require.Equal(t, "Coffee beans", p.Title)
		require.Equal(t, "7.77", p.Price.StringFixed(2))
	}
	require.Equal(t, 1, repo.calls)
}

func TestServiceNotFound(t *testing.T) {
	svc, err := catalog.NewService(catalog.ServiceConfig{Repository: catalog.NewFileRepository(nil)})
	require.NoError(t, err)

	_, err = svc.Product(context.Background(), "missing")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
	require.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestServiceRejectsNegativePrice(t *testing.T) {
	repo := catalog.NewFileRepository([]catalog.Product{{Slug: "refund", Title: "Refund", Price: decimal.NewFromInt(-1)}})
	svc, err := catalog.NewService(catalog.ServiceConfig{Repository: repo})
	require.NoError(t, err)

	_, err = svc.Product(context.Background(), "refund")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "INVALID_PRICE", appErr.Code)
}

type fakeRow struct {
	values []string
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		*(d.(*string)) = r.values[i]
	}
	return nil
}

type fakeDB struct {
	rows map[string]fakeRow
	sql  string
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	db.sql = sql
	row, ok := db.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return row
}

func TestPGRepository(t *testing.T) {
	db := &fakeDB{rows: map[string]fakeRow{
		"mug":    {values: []string{"mug", "Mug", "12.50"}},
		"broken": {values: []string{"broken", "Broken", "n/a"}},
	}}
	repo := catalog.NewPGRepository(db)

	p, err := repo.FindBySlug(context.Background(), "MUG")
	require.NoError(t, err)
	require.Equal(t, "12.50", p.Price.StringFixed(2))
	require.Contains(t, db.sql, "price::text")

	_, err = repo.FindBySlug(context.Background(), "nope")
	require.True(t, errors.Is(err, catalog.ErrProductNotFound))

	_, err = repo.FindBySlug(context.Background(), "broken")
	require.Error(t, err)
	require.False(t, errors.Is(err, catalog.ErrProductNotFound))
}

func TestHandlerProduct(t *testing.T) {
	products, err := catalog.DecodeSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	svc, err := catalog.NewService(catalog.ServiceConfig{Repository: catalog.NewFileRepository(products)})
	require.NoError(t, err)

	r := chi.NewRouter()
	h := &catalog.Handler{Service: svc}
	r.Get("/api/v1/products/{slug}", h.Product)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/mug", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data struct {
			Slug  string `json:"slug"`
			Price string `json:"price"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "mug", body.Data.Slug)
	require.Equal(t, "12.50", body.Data.Price)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/none", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

type failingRepo struct {
	err   error
	calls int
}

func (r *failingRepo) FindBySlug(context.Context, string) (catalog.Product, error) {
	r.calls++
	return catalog.Product{}, r.err
}

func TestBreakerRepositoryOpensOnOutage(t *testing.T) {
	inner := &failingRepo{err: errors.New("dial tcp: connection refused")}
	repo := catalog.BreakerRepository{Repo: inner, Breaker: resilience.NewBreaker("catalog", 2, 0.5, time.Minute)}
	svc, err := catalog.NewService(catalog.ServiceConfig{Repository: repo})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = svc.Product(context.Background(), "coffee-beans")
		require.Error(t, err)
		require.False(t, common.IsAppError(err))
	}

	_, err = svc.Product(context.Background(), "coffee-beans")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusServiceUnavailable, appErr.HTTPStatus)
	require.Equal(t, "CATALOG_UNAVAILABLE", appErr.Code)
	require.Equal(t, 2, inner.calls)
}

func TestBreakerRepositoryIgnoresMissingProducts(t *testing.T) {
	breaker := resilience.NewBreaker("catalog", 1, 0.5, time.Minute)
	repo := catalog.BreakerRepository{Repo: catalog.NewFileRepository(nil), Breaker: breaker}

	for i := 0; i < 3; i++ {
		_, err := repo.FindBySlug(context.Background(), "missing")
		require.ErrorIs(t, err, catalog.ErrProductNotFound)
	}
	require.Equal(t, resilience.Closed, breaker.State())
}
