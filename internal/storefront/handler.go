package storefront

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/guard"
	"github.com/noah-isme/toko-storefront/internal/notify"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/pricing"
	"github.com/noah-isme/toko-storefront/internal/quantity"
	"github.com/noah-isme/toko-storefront/internal/web"
)

// Products resolves catalog entries by slug.
type Products interface {
	Product(ctx context.Context, slug string) (catalog.Product, error)
}

// Carts stores the quantity chosen per product.
type Carts interface {
	Quantity(ctx context.Context, cartID, slug string) (int, bool, error)
	SetQuantity(ctx context.Context, cartID, slug string, qty int) error
	Items(ctx context.Context, cartID string) (map[string]int, error)
}

// Handler serves the product pages, the quote API and the account page.
type Handler struct {
	Products   Products
	Carts      Carts
	CartCookie cart.Cookie
	Bounds     quantity.Bounds
	Renderer   *web.Renderer
	Validate   *validator.Validate
	Guard      guard.Guard
	// Notifier receives rejected-input messages in addition to the page toasts.
	Notifier notify.Notifier
	Metrics  *obs.DomainMetrics
	Logger   zerolog.Logger
	// CommitLimit wraps the quantity commit route, typically with a rate limiter.
	CommitLimit func(http.Handler) http.Handler
	Featured    []string
}

// ProductView is the data the product template renders.
type ProductView struct {
	Product   catalog.Product
	UnitPrice string
	View      quantity.View
}

// Mount registers the HTML routes on r.
func (h *Handler) Mount(r chi.Router) {
	commit := http.Handler(http.HandlerFunc(h.CommitCount))
	if h.CommitLimit != nil {
		commit = h.CommitLimit(commit)
	}
	r.Get("/", h.Home)
	r.Get("/products/{slug}", h.ProductPage)
	r.Method(http.MethodPost, "/products/{slug}/count", commit)

	guarded := h.Guard
	if guarded.Observe == nil && h.Metrics != nil {
		guarded.Observe = h.Metrics.GuardDecision
	}
	r.Method(http.MethodGet, "/account", guarded.Middleware(http.HandlerFunc(h.Account)))
}

// MountAPI registers the JSON routes on r, which is expected to live under /api/v1.
func (h *Handler) MountAPI(r chi.Router) {
	r.Post("/quantity/quote", h.Quote)
}

// Home handles GET /.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	featured := make([]catalog.Product, 0, len(h.Featured))
	for _, slug := range h.Featured {
		p, err := h.Products.Product(r.Context(), slug)
		if err != nil {
			h.Logger.Debug().Err(err).Str("slug", slug).Msg("skip featured product")
			continue
		}
		featured = append(featured, p)
	}
	h.Renderer.Render(w, r, http.StatusOK, web.PageHome, "Home", featured)
}

// ProductPage handles GET /products/{slug}.
func (h *Handler) ProductPage(w http.ResponseWriter, r *http.Request) {
	product, err := h.Products.Product(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	value, err := h.currentQuantity(r.Context(), h.CartCookie.ID(r), product.Slug)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	in := h.input(product, value)
	h.renderProduct(w, r, http.StatusOK, product, in)
}

// CommitCount handles POST /products/{slug}/count. Accepted counts are
// stored and the shopper is sent back to the product page; rejected ones
// re-render the page with the stored count and a toast.
func (h *Handler) CommitCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	product, err := h.Products.Product(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	cartID := h.CartCookie.Ensure(w, r)
	value, err := h.currentQuantity(ctx, cartID, product.Slug)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	var saveErr error
	in := h.input(product, value)
	in.Notifier = notify.Multi{notify.ContextToasts{}, h.Notifier}
	in.SetCount = func(n int) {
		saveErr = h.Carts.SetQuantity(ctx, cartID, product.Slug, n)
	}

	if _, err := in.Change(ctx, r.PostFormValue("count")); err != nil {
		if !errors.Is(err, quantity.ErrOutOfRange) {
			common.WriteError(w, err)
			return
		}
		h.Metrics.QuantityChange(obs.ResultRejected)
		h.renderProduct(w, r, http.StatusUnprocessableEntity, product, in)
		return
	}
	if saveErr != nil {
		common.WriteError(w, saveErr)
		return
	}
	h.Metrics.QuantityChange(obs.ResultAccepted)
	http.Redirect(w, r, "/products/"+product.Slug, http.StatusSeeOther)
}

// AccountLine is one cart entry on the account page.
type AccountLine struct {
	Slug      string
	Title     string
	Qty       int
	UnitPrice string
	Total     string
}

// AccountView is the cart summary shown on the account page.
type AccountView struct {
	Lines []AccountLine
	Total string
}

// Account handles GET /account. It is only reachable through the guard.
func (h *Handler) Account(w http.ResponseWriter, r *http.Request) {
	view, err := h.cartSummary(r.Context(), h.CartCookie.ID(r))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	h.Renderer.Render(w, r, http.StatusOK, web.PageAccount, "Your account", view)
}

// cartSummary prices every positive cart line at the current catalog price.
// Products that left the catalog are skipped.
func (h *Handler) cartSummary(ctx context.Context, cartID string) (AccountView, error) {
	view := AccountView{Total: pricing.FormatTotal(decimal.Zero)}
	if cartID == "" || h.Carts == nil {
		return view, nil
	}
	quantities, err := h.Carts.Items(ctx, cartID)
	if err != nil {
		return view, err
	}
	slugs := make([]string, 0, len(quantities))
	for slug, qty := range quantities {
		if qty > 0 {
			slugs = append(slugs, slug)
		}
	}
	sort.Strings(slugs)

	products := make([]catalog.Product, 0, len(slugs))
	items := make([]pricing.Item, 0, len(slugs))
	for _, slug := range slugs {
		p, err := h.Products.Product(ctx, slug)
		if err != nil {
			if common.AsAppError(err).HTTPStatus == http.StatusNotFound {
				h.Logger.Debug().Str("slug", slug).Msg("skip cart line for missing product")
				continue
			}
			return view, err
		}
		products = append(products, p)
		items = append(items, pricing.Item{Qty: quantities[slug], UnitPrice: p.Price})
	}

	summary := pricing.Compute(items)
	for i, line := range summary.Lines {
		view.Lines = append(view.Lines, AccountLine{
			Slug:      products[i].Slug,
			Title:     products[i].Title,
			Qty:       line.Qty,
			UnitPrice: pricing.FormatTotal(line.UnitPrice),
			Total:     pricing.FormatTotal(line.Total),
		})
	}
	view.Total = pricing.FormatTotal(summary.Total)
	return view, nil
}

func (h *Handler) input(product catalog.Product, value int) *quantity.Input {
	return &quantity.Input{
		Value:  value,
		Price:  product.Price,
		Bounds: h.Bounds,
		Styles: quantity.DefaultStyles(),
	}
}

func (h *Handler) renderProduct(w http.ResponseWriter, r *http.Request, status int, product catalog.Product, in *quantity.Input) {
	h.Renderer.Render(w, r, status, web.PageProduct, product.Title, ProductView{
		Product:   product,
		UnitPrice: product.Price.StringFixed(2),
		View:      in.View(),
	})
}

// currentQuantity returns the stored count, or the smallest allowed count for a fresh cart.
func (h *Handler) currentQuantity(ctx context.Context, cartID, slug string) (int, error) {
	if cartID != "" && h.Carts != nil {
		qty, ok, err := h.Carts.Quantity(ctx, cartID, slug)
		if err != nil {
			return 0, err
		}
		if ok {
			return qty, nil
		}
	}
	return startingQuantity(h.Bounds), nil
}

func startingQuantity(b quantity.Bounds) int {
	b = b.Normalized()
	if math.IsInf(b.Min, 0) || math.IsNaN(b.Min) || b.Min <= 1 {
		return 1
	}
	return int(math.Ceil(b.Min))
}
