package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const findBySlugSQL = `SELECT slug, title, price::text FROM products WHERE slug = $1`

// rowQuerier is satisfied by *pgxpool.Pool, pgx.Conn and pgx.Tx.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGRepository reads products from Postgres.
type PGRepository struct {
	db rowQuerier
}

// NewPGRepository wraps a pgx pool (or any QueryRow provider).
func NewPGRepository(db rowQuerier) *PGRepository {
	return &PGRepository{db: db}
}

// FindBySlug implements Repository.
func (r *PGRepository) FindBySlug(ctx context.Context, slug string) (Product, error) {
	if r == nil || r.db == nil {
		return Product{}, errors.New("catalog: database not configured")
	}
	var (
		p     Product
		price string
	)
	err := r.db.QueryRow(ctx, findBySlugSQL, NormalizeSlug(slug)).Scan(&p.Slug, &p.Title, &price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, fmt.Errorf("query product: %w", err)
	}
	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return Product{}, fmt.Errorf("parse price %q: %w", price, err)
	}
	return p, nil
}
