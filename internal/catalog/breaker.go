package catalog

import (
	"context"
	"errors"

	"github.com/noah-isme/toko-storefront/internal/resilience"
)

// BreakerRepository stops calling a failing repository until it recovers.
// Missing products are answers, not failures.
type BreakerRepository struct {
	Repo    Repository
	Breaker *resilience.Breaker
}

func (r BreakerRepository) FindBySlug(ctx context.Context, slug string) (Product, error) {
	var p Product
	err := r.Breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		p, err = r.Repo.FindBySlug(ctx, slug)
		return err
	}, func(err error) bool {
		return !errors.Is(err, ErrProductNotFound) && !errors.Is(err, context.Canceled)
	})
	return p, err
}
