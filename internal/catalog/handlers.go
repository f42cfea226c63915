package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/toko-storefront/internal/common"
)

// Handler serves product lookups as JSON.
type Handler struct {
	Service *Service
}

// productResponse keeps the price as a fixed two-decimal string.
type productResponse struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Price string `json:"price"`
}

// Product handles GET /api/v1/products/{slug}.
func (h *Handler) Product(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	p, err := h.Service.Product(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": productResponse{Slug: p.Slug, Title: p.Title, Price: p.Price.StringFixed(2)},
	})
}
