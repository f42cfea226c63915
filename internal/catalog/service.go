package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/resilience"
)

// Service resolves products through the cache and the backing repository.
type Service struct {
	repo   Repository
	cache  *Cache
	logger zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Repository Repository
	Cache      *Cache
	Logger     *zerolog.Logger
}

// NewService validates dependencies and builds a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Repository == nil {
		return nil, errors.New("catalog: repository is required")
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Service{repo: cfg.Repository, cache: cfg.Cache, logger: logger}, nil
}

// Product returns the product for slug. Cache failures fall through to the repository.
func (s *Service) Product(ctx context.Context, slug string) (Product, error) {
	slug = NormalizeSlug(slug)
	if slug == "" {
		return Product{}, common.NotFound("product not found", nil)
	}
	if p, ok, err := s.cache.Get(ctx, slug); err != nil {
		s.logger.Warn().Err(err).Str("slug", slug).Msg("catalog cache read failed")
	} else if ok {
		return p, nil
	}

	p, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return Product{}, common.NotFound("product not found", err)
		}
		if errors.Is(err, resilience.ErrOpenCircuit) {
			return Product{}, common.NewAppError("CATALOG_UNAVAILABLE", "catalog is temporarily unavailable", http.StatusServiceUnavailable, err)
		}
		return Product{}, fmt.Errorf("find product %s: %w", slug, err)
	}
	if p.Price.IsNegative() {
		return Product{}, common.NewAppError("INVALID_PRICE", "product price is invalid", http.StatusInternalServerError,
			fmt.Errorf("product %s has negative price %s", slug, p.Price))
	}
	if err := s.cache.Set(ctx, p); err != nil {
		s.logger.Warn().Err(err).Str("slug", slug).Msg("catalog cache write failed")
	}
	return p, nil
}
