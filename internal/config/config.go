package config

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv                string
	Port                  string
	DatabaseURL           string
	RedisURL              string
	CatalogFile           string
	CatalogCacheTTL       time.Duration
	CatalogBreakerOpenFor time.Duration
	SessionSecret         string
	SessionTTL            time.Duration
	SessionCookie         string
	AuthUsers             string
	CookieDomain          string
	CookieSecure          bool
	CookieSameSite        http.SameSite
	CartTTL               time.Duration
	CartCookie            string
	QuantityMax           *float64
	GuardRedirect         string
	FeaturedProducts      []string
	CORSAllowedOrigins    []string
	RateLimitCommits      string
	BodyLimitBytes        int64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:                valueOrDefault(k.String("APP_ENV"), "development"),
		Port:                  valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:           strings.TrimSpace(k.String("DATABASE_URL")),
		RedisURL:              strings.TrimSpace(k.String("REDIS_URL")),
		CatalogFile:           valueOrDefault(k.String("CATALOG_FILE"), "catalog.yaml"),
		CatalogCacheTTL:       parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		CatalogBreakerOpenFor: parseDuration(k.String("CATALOG_BREAKER_OPEN_FOR"), "30s"),
		SessionSecret:         k.String("SESSION_SECRET"),
		SessionTTL:            parseDuration(k.String("SESSION_TTL"), "12h"),
		SessionCookie:         valueOrDefault(k.String("SESSION_COOKIE"), "toko_session"),
		AuthUsers:             k.String("AUTH_USERS"),
		CookieDomain:          strings.TrimSpace(k.String("COOKIE_DOMAIN")),
		CookieSecure:          parseBool(k.String("COOKIE_SECURE")),
		CookieSameSite:        parseSameSite(k.String("COOKIE_SAMESITE")),
		CartTTL:               parseDuration(k.String("CART_TTL"), "168h"),
		CartCookie:            valueOrDefault(k.String("CART_COOKIE"), "toko_cart"),
		GuardRedirect:         valueOrDefault(k.String("GUARD_REDIRECT"), "/login"),
		FeaturedProducts:      splitAndTrim(k.String("FEATURED_PRODUCTS")),
		CORSAllowedOrigins:    splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		RateLimitCommits:      valueOrDefault(k.String("RATE_LIMIT_COMMITS"), "60-M"),
		BodyLimitBytes:        parseInt64(k.String("BODY_LIMIT_BYTES"), 64<<10),
	}

	if cfg.CookieSameSite == http.SameSiteDefaultMode {
		cfg.CookieSameSite = http.SameSiteLaxMode
	}

	if raw := strings.TrimSpace(k.String("QUANTITY_MAX")); raw != "" {
		hi, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("QUANTITY_MAX: %w", err)
		}
		if math.IsNaN(hi) || hi < 1 {
			return nil, fmt.Errorf("QUANTITY_MAX must be at least 1, got %q", raw)
		}
		cfg.QuantityMax = &hi
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if strings.TrimSpace(cfg.SessionSecret) == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// UsesDatabase reports whether the catalog is served from Postgres.
func (c *Config) UsesDatabase() bool {
	return c.DatabaseURL != ""
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt64(value string, fallback int64) int64 {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		return http.SameSiteLaxMode
	default:
		return http.SameSiteDefaultMode
	}
}

// MustLoad behaves like Load but panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
