package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/toko-storefront/internal/auth"
	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/config"
	"github.com/noah-isme/toko-storefront/internal/guard"
	"github.com/noah-isme/toko-storefront/internal/health"
	"github.com/noah-isme/toko-storefront/internal/notify"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/quantity"
	"github.com/noah-isme/toko-storefront/internal/ratelimit"
	"github.com/noah-isme/toko-storefront/internal/resilience"
	"github.com/noah-isme/toko-storefront/internal/security"
	"github.com/noah-isme/toko-storefront/internal/storefront"
	"github.com/noah-isme/toko-storefront/internal/web"
)

// Router assembles the storefront services and HTTP routes.
func Router(cfg *config.Config, deps *Dependencies, o Observability) (http.Handler, error) {
	logger := deps.Logger

	repo, err := catalogRepository(cfg, deps, o)
	if err != nil {
		return nil, err
	}
	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Repository: repo,
		Cache:      catalog.NewCache(deps.Redis, cfg.CatalogCacheTTL),
		Logger:     &logger,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise catalog service: %w", err)
	}

	users, err := auth.ParseStaticUsers(cfg.AuthUsers)
	if err != nil {
		return nil, fmt.Errorf("parse AUTH_USERS: %w", err)
	}
	authService, err := auth.NewService(auth.Config{
		Users:       users,
		Revocations: auth.RedisRevocations{Client: deps.Redis},
		Secret:      cfg.SessionSecret,
		SessionTTL:  cfg.SessionTTL,
		ClockSkew:   30 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise auth service: %w", err)
	}

	renderer, err := web.NewRenderer(logger)
	if err != nil {
		return nil, err
	}

	commitLimiter, err := ratelimit.New(deps.Redis, cfg.RateLimitCommits, "ratelimit:commit")
	if err != nil {
		return nil, err
	}

	var domain *obs.DomainMetrics
	var httpMetrics *obs.HTTPMetrics
	if o.Metrics {
		domain = obs.NewDomainMetrics(o.Namespace, deps.Registry)
		httpMetrics = obs.NewHTTPMetrics(o.Namespace, o.Buckets, deps.Registry)
	}

	authHandler := &auth.Handler{
		Service:        authService,
		Renderer:       renderer,
		Validate:       deps.Validator,
		SessionCookie:  cfg.SessionCookie,
		CookieDomain:   cfg.CookieDomain,
		CookieSecure:   cfg.CookieSecure,
		CookieSameSite: cfg.CookieSameSite,
	}
	authMiddleware := auth.Middleware{Service: authService, SessionCookie: cfg.SessionCookie, Logger: &logger}

	shop := &storefront.Handler{
		Products: catalogService,
		Carts:    &cart.Store{Client: deps.Redis, TTL: cfg.CartTTL},
		CartCookie: cart.Cookie{
			Name:     cfg.CartCookie,
			TTL:      cfg.CartTTL,
			Domain:   cfg.CookieDomain,
			Secure:   cfg.CookieSecure,
			SameSite: cfg.CookieSameSite,
		},
		Bounds:   quantity.NewBounds(nil, cfg.QuantityMax),
		Renderer: renderer,
		Validate: deps.Validator,
		Guard:    guard.Guard{RedirectTo: cfg.GuardRedirect},
		Notifier: notify.LogNotifier{Logger: logger, Source: "quantity"},
		Metrics:  domain,
		Logger:   logger,
		CommitLimit: ratelimit.Handler{
			Limiter: commitLimiter,
			OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter unavailable") },
		}.Middleware,
		Featured: cfg.FeaturedProducts,
	}
	catalogHandler := &catalog.Handler{Service: catalogService}

	probes := []health.Probe{health.RedisProbe(deps.Redis, 300*time.Millisecond)}
	if deps.DB != nil {
		probes = append(probes, health.PostgresProbe(deps.DB, 500*time.Millisecond))
	}
	healthHandler := health.Handler{Probes: probes}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if o.Tracing {
		r.Use(obs.SpanRoute)
	}
	if httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.CookieSecure, HSTSMaxAge: 31536000}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)
	r.Use(authMiddleware.Authenticate)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)

	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)
	r.Handle("/static/*", web.Static())
	if o.Metrics {
		if g, ok := deps.Registry.(prometheus.Gatherer); ok {
			r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
		}
	}

	r.Group(func(pages chi.Router) {
		pages.Use(security.CSRF{Secure: cfg.CookieSecure}.Middleware)
		pages.Use(notify.Middleware)
		pages.Get("/login", authHandler.LoginPage)
		pages.Post("/login", authHandler.Login)
		pages.Post("/logout", authHandler.Logout)
		shop.Mount(pages)
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins(cfg),
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		api.Get("/products/{slug}", catalogHandler.Product)
		shop.MountAPI(api)
	})

	var handler http.Handler = r
	if o.Tracing {
		handler = otelhttp.NewHandler(r, "storefront")
	}
	return handler, nil
}

func catalogRepository(cfg *config.Config, deps *Dependencies, o Observability) (catalog.Repository, error) {
	if deps.DB != nil {
		breaker := resilience.NewBreaker("catalog.postgres", 5, 0.5, cfg.CatalogBreakerOpenFor).WithLogger(deps.Logger)
		if o.Metrics {
			metrics, err := resilience.NewMetrics(o.Namespace, deps.Registry)
			if err != nil {
				return nil, fmt.Errorf("register breaker metrics: %w", err)
			}
			breaker.WithMetrics(metrics)
		}
		return catalog.BreakerRepository{Repo: catalog.NewPGRepository(deps.DB), Breaker: breaker}, nil
	}
	repo, err := catalog.LoadFile(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return repo, nil
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
