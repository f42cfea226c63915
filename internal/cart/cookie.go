package cart

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cookie issues and reads the anonymous cart id.
type Cookie struct {
	Name     string
	TTL      time.Duration
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

func (c Cookie) name() string {
	if c.Name == "" {
		return "toko_cart"
	}
	return c.Name
}

// ID returns the cart id carried by the request, if any.
func (c Cookie) ID(r *http.Request) string {
	ck, err := r.Cookie(c.name())
	if err != nil {
		return ""
	}
	id := strings.TrimSpace(ck.Value)
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}

// Ensure returns the request's cart id, minting and setting a new one when absent.
func (c Cookie) Ensure(w http.ResponseWriter, r *http.Request) string {
	if id := c.ID(r); id != "" {
		return id
	}
	id := uuid.NewString()
	ttl := c.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	sameSite := c.SameSite
	if sameSite == 0 {
		sameSite = http.SameSiteLaxMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    id,
		Domain:   c.Domain,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: sameSite,
	})
	return id
}
