package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/app"
	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/migrations"
)

const upsertProductSQL = `
INSERT INTO products (slug, title, price, updated_at)
VALUES ($1, $2, $3::numeric, now())
ON CONFLICT (slug) DO UPDATE SET title = EXCLUDED.title, price = EXCLUDED.price, updated_at = now()`

func main() {
	_ = godotenv.Load()
	logger := obs.NewLogger(os.Getenv("OBS_LOG_FORMAT"), os.Getenv("OBS_LOG_LEVEL"))

	file := envOr("CATALOG_FILE", "catalog.yaml")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set")
	}

	if os.Getenv("SEED_SKIP_MIGRATE") == "" {
		if err := app.RunMigrations(dbURL, migrations.FS, "."); err != nil {
			logger.Fatal().Err(err).Msg("migrate")
		}
		logger.Info().Msg("migrations applied")
	}

	f, err := os.Open(file)
	if err != nil {
		logger.Fatal().Err(err).Msg("open seed file")
	}
	products, err := catalog.DecodeSeed(f)
	_ = f.Close()
	if err != nil {
		logger.Fatal().Err(err).Msg("decode seed file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if err := seedProducts(ctx, pool, products, logger); err != nil {
		logger.Fatal().Err(err).Msg("seed products")
	}
	logger.Info().Int("products", len(products)).Msg("seeding completed")
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, products []catalog.Product, logger zerolog.Logger) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for _, p := range products {
			if p.Price.IsNegative() {
				return fmt.Errorf("product %s: negative price %s", p.Slug, p.Price)
			}
			if _, err := tx.Exec(ctx, upsertProductSQL, p.Slug, p.Title, p.Price.StringFixed(2)); err != nil {
				return fmt.Errorf("upsert %s: %w", p.Slug, err)
			}
			logger.Debug().Str("slug", p.Slug).Str("price", p.Price.StringFixed(2)).Msg("product upserted")
		}
		return nil
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
