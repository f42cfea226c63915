package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocations remembers signed-out token ids until they expire.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	Revoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisRevocations stores revoked token ids as expiring keys.
type RedisRevocations struct {
	Client *redis.Client
	Prefix string
	Now    func() time.Time
}

func (r RedisRevocations) key(tokenID string) string {
	prefix := r.Prefix
	if prefix == "" {
		prefix = "session:revoked:"
	}
	return prefix + tokenID
}

func (r RedisRevocations) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Revoke implements Revocations.
func (r RedisRevocations) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if r.Client == nil || tokenID == "" {
		return nil
	}
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.Client.Set(ctx, r.key(tokenID), "1", ttl).Err()
}

// Revoked implements Revocations.
func (r RedisRevocations) Revoked(ctx context.Context, tokenID string) (bool, error) {
	if r.Client == nil || tokenID == "" {
		return false, nil
	}
	err := r.Client.Get(ctx, r.key(tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
