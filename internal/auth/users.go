package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
)

// ErrUnknownUser is returned by a UserStore when no user matches.
var ErrUnknownUser = errors.New("auth: unknown user")

// User is a shopper able to sign in.
type User struct {
	ID           string
	Name         string
	PasswordHash string
}

// UserStore looks up users by their login name.
type UserStore interface {
	FindByName(ctx context.Context, name string) (User, error)
}

// StaticUsers is a fixed set of users keyed by name.
type StaticUsers map[string]User

// ParseStaticUsers reads "name:argon2id-hash" pairs separated by semicolons.
func ParseStaticUsers(raw string) (StaticUsers, error) {
	users := StaticUsers{}
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, hash, ok := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		hash = strings.TrimSpace(hash)
		if !ok || name == "" || hash == "" {
			return nil, fmt.Errorf("auth: malformed user entry %q", entry)
		}
		if !strings.HasPrefix(hash, "$argon2id$") {
			return nil, fmt.Errorf("auth: user %s: password hash is not argon2id", name)
		}
		users[strings.ToLower(name)] = User{ID: strings.ToLower(name), Name: name, PasswordHash: hash}
	}
	return users, nil
}

// FindByName implements UserStore. Names match case-insensitively.
func (s StaticUsers) FindByName(_ context.Context, name string) (User, error) {
	u, ok := s[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return User{}, ErrUnknownUser
	}
	return u, nil
}

// HashPassword hashes a password for use in AUTH_USERS.
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams)
}
