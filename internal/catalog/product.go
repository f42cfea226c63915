package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrProductNotFound is returned by repositories when no product matches the slug.
var ErrProductNotFound = errors.New("product not found")

// Product is the priced item shown on a product page.
type Product struct {
	Slug  string          `json:"slug"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
}

// Repository looks up products by slug.
type Repository interface {
	FindBySlug(ctx context.Context, slug string) (Product, error)
}

// NormalizeSlug lowercases and trims a slug for lookups and cache keys.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
