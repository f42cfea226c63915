package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var testParams = &argon2id.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func testUsers(t *testing.T) StaticUsers {
	t.Helper()
	hash, err := argon2id.CreateHash("hunter2!!", testParams)
	require.NoError(t, err)
	users, err := ParseStaticUsers("Alice:" + hash)
	require.NoError(t, err)
	return users
}

func testRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func testService(t *testing.T, client *redis.Client, now time.Time) *Service {
	t.Helper()
	svc, err := NewService(Config{
		Users:       testUsers(t),
		Revocations: RedisRevocations{Client: client, Now: func() time.Time { return now }},
		Secret:      "test-secret",
		SessionTTL:  time.Hour,
	})
	require.NoError(t, err)
	svc.WithNow(func() time.Time { return now })
	return svc
}

type failingUsers struct{ err error }

func (f failingUsers) FindByName(context.Context, string) (User, error) {
	return User{}, f.err
}
