package auth

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Denylist remembers revoked token ids until the tokens would have expired
// anyway. It is only wired in when jwt.revocationEnabled is set; otherwise
// logout is advisory and tokens stay valid until expiry.
type Denylist struct {
	store *cache.Cache
	now   func() time.Time
}

func NewDenylist() *Denylist {
	return &Denylist{
		store: cache.New(cache.NoExpiration, 10*time.Minute),
		now:   time.Now,
	}
}

// Revoke denylists the token described by claims for the rest of its
// lifetime. Tokens without an id or already expired are ignored.
func (d *Denylist) Revoke(claims *Claims) {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return
	}
	remaining := claims.ExpiresAt.Sub(d.now())
	if remaining <= 0 {
		return
	}
	d.store.Set(claims.ID, struct{}{}, remaining)
}

// IsRevoked reports whether the token id has been revoked.
func (d *Denylist) IsRevoked(tokenID string) bool {
	if d == nil || tokenID == "" {
		return false
	}
	_, found := d.store.Get(tokenID)
	return found
}
