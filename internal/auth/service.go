package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/toko-storefront/internal/common"
)

const defaultSessionTTL = 12 * time.Hour

// Service signs in shoppers and turns session tokens back into sessions.
type Service struct {
	users       UserStore
	revocations Revocations
	secret      []byte
	ttl         time.Duration
	now         func() time.Time
	signer      jwa.SignatureAlgorithm
	validator   TokenValidator
	issuer      string
	audience    string
	clockSkew   time.Duration
}

// Config configures the auth service.
type Config struct {
	Users       UserStore
	Revocations Revocations
	Secret      string
	SessionTTL  time.Duration
	Issuer      string
	Audience    string
	ClockSkew   time.Duration
}

// Issued is a freshly signed session token.
type Issued struct {
	Session   common.Session
	Token     string
	ExpiresAt time.Time
}

// NewService constructs a Service instance with sane defaults.
func NewService(cfg Config) (*Service, error) {
	if cfg.Users == nil {
		return nil, errors.New("auth: user store is required")
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "toko-storefront"
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = "toko-web"
	}
	clockSkew := cfg.ClockSkew
	if clockSkew < 0 {
		clockSkew = 0
	}
	return &Service{
		users:       cfg.Users,
		revocations: cfg.Revocations,
		secret:      []byte(secret),
		ttl:         ttl,
		now:         time.Now,
		signer:      jwa.HS256,
		validator: TokenValidator{
			Issuer:    issuer,
			Audience:  audience,
			ClockSkew: clockSkew,
			Algorithm: jwa.HS256,
		},
		issuer:    issuer,
		audience:  audience,
		clockSkew: clockSkew,
	}, nil
}

// WithNow allows tests to override the time provider.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Login checks the password and signs a session for the user.
func (s *Service) Login(ctx context.Context, name, password string) (Issued, error) {
	invalid := common.NewAppError("INVALID_CREDENTIALS", "invalid name or password", http.StatusUnauthorized, nil)
	if strings.TrimSpace(name) == "" || password == "" {
		return Issued{}, invalid
	}
	user, err := s.users.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			return Issued{}, invalid
		}
		return Issued{}, fmt.Errorf("find user: %w", err)
	}
	ok, err := argon2id.ComparePasswordAndHash(password, user.PasswordHash)
	if err != nil {
		return Issued{}, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return Issued{}, invalid
	}
	return s.Issue(user)
}

// Issue signs a session token for the user.
func (s *Service) Issue(user User) (Issued, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	tokenID := uuid.NewString()
	tok, err := jwt.NewBuilder().
		JwtID(tokenID).
		Subject(user.ID).
		Issuer(s.issuer).
		Audience([]string{s.audience}).
		IssuedAt(now).
		NotBefore(now.Add(-s.clockSkew)).
		Expiration(expiresAt).
		Claim(nameClaim, user.Name).
		Build()
	if err != nil {
		return Issued{}, fmt.Errorf("build token: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(s.signer, s.secret))
	if err != nil {
		return Issued{}, fmt.Errorf("sign token: %w", err)
	}
	return Issued{
		Session:   common.Session{UserID: user.ID, Name: user.Name, TokenID: tokenID},
		Token:     string(signed),
		ExpiresAt: expiresAt,
	}, nil
}

// Parse verifies a session token and returns the session it carries.
func (s *Service) Parse(ctx context.Context, token string) (common.Session, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return common.Session{}, common.NewAppError("UNAUTHORIZED", "missing token", http.StatusUnauthorized, nil)
	}
	algorithm, err := tokenAlgorithm(trimmed)
	if err != nil {
		return common.Session{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if s.validator.Algorithm != "" && algorithm != s.validator.Algorithm {
		return common.Session{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, fmt.Errorf("unexpected token algorithm %s", algorithm))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, s.secret), jwt.WithValidate(false))
	if err != nil {
		return common.Session{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if err := s.validator.Validate(parsed, algorithm, s.now()); err != nil {
		return common.Session{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if s.revocations != nil {
		revoked, err := s.revocations.Revoked(ctx, parsed.JwtID())
		if err != nil {
			return common.Session{}, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return common.Session{}, common.NewAppError("UNAUTHORIZED", "session ended", http.StatusUnauthorized, nil)
		}
	}
	return common.Session{
		UserID:  parsed.Subject(),
		Name:    claimString(parsed, nameClaim),
		TokenID: parsed.JwtID(),
	}, nil
}

// Logout revokes the session's token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, session common.Session) error {
	if s.revocations == nil || session.TokenID == "" {
		return nil
	}
	return s.revocations.Revoke(ctx, session.TokenID, s.now().Add(s.ttl))
}
