package app

import (
	"context"
	"fmt"

	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/config"
	"github.com/noah-isme/toko-storefront/internal/obs"
)

// Dependencies are the shared clients every module is built from.
type Dependencies struct {
	DB        *pgxpool.Pool
	Redis     *redis.Client
	Validator *validator.Validate
	Registry  prometheus.Registerer
	Logger    zerolog.Logger
}

// Observability toggles the instrumentation wrapped around clients and routes.
type Observability struct {
	Namespace string
	Metrics   bool
	Tracing   bool
	Buckets   []float64
}

// Open connects Redis and, when configured, Postgres.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger, o Observability) (*Dependencies, error) {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	if o.Tracing {
		if err := redisotel.InstrumentTracing(rdb); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
	}
	if o.Metrics {
		if err := redisotel.InstrumentMetrics(rdb); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	deps := &Dependencies{
		Redis:     rdb,
		Validator: validator.New(validator.WithRequiredStructEnabled()),
		Registry:  prometheus.DefaultRegisterer,
		Logger:    logger,
	}
	if !cfg.UsesDatabase() {
		return deps, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if o.Tracing {
		poolConfig.ConnConfig.Tracer = obs.PGXTracer{Name: "catalog.pgx"}
	}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "toko-storefront"
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		deps.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	deps.DB = pool
	return deps, nil
}

// Close releases every client that was opened.
func (d *Dependencies) Close() {
	if d == nil {
		return
	}
	if d.DB != nil {
		d.DB.Close()
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error().Err(err).Msg("close redis")
		}
	}
}
