package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL = 7 * 24 * time.Hour
	keyPrefix  = "cart:"
)

// ErrInvalidInput is returned when a cart id or slug is blank.
var ErrInvalidInput = errors.New("invalid input")

// Store keeps per-cart quantities in a Redis hash keyed by product slug.
type Store struct {
	Client *redis.Client
	TTL    time.Duration
}

func (s *Store) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return defaultTTL
	}
	return s.TTL
}

func key(cartID string) string {
	return keyPrefix + cartID
}

func check(cartID, slug string) error {
	if strings.TrimSpace(cartID) == "" || strings.TrimSpace(slug) == "" {
		return ErrInvalidInput
	}
	return nil
}

// Quantity returns the stored quantity and whether one exists.
func (s *Store) Quantity(ctx context.Context, cartID, slug string) (int, bool, error) {
	if err := check(cartID, slug); err != nil {
		return 0, false, err
	}
	raw, err := s.Client.HGet(ctx, key(cartID), slug).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read cart quantity: %w", err)
	}
	qty, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse cart quantity %q: %w", raw, err)
	}
	return qty, true, nil
}

// SetQuantity records qty for slug and refreshes the cart TTL.
func (s *Store) SetQuantity(ctx context.Context, cartID, slug string, qty int) error {
	if err := check(cartID, slug); err != nil {
		return err
	}
	k := key(cartID)
	pipe := s.Client.TxPipeline()
	pipe.HSet(ctx, k, slug, qty)
	pipe.Expire(ctx, k, s.ttl())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write cart quantity: %w", err)
	}
	return nil
}

// Items returns every slug and quantity in the cart.
func (s *Store) Items(ctx context.Context, cartID string) (map[string]int, error) {
	if strings.TrimSpace(cartID) == "" {
		return nil, ErrInvalidInput
	}
	raw, err := s.Client.HGetAll(ctx, key(cartID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	out := make(map[string]int, len(raw))
	for slug, v := range raw {
		qty, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		out[slug] = qty
	}
	return out, nil
}
