package esim

import (
	"context"
	"time"
)

// DefaultTokenSafetyMargin is how long before expiry a cached token stops
// being handed out.
const DefaultTokenSafetyMargin = 60 * time.Second

// AccessToken is a bearer credential issued by the provider.
type AccessToken struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ValidAt reports whether the token may still be issued at now.
func (t *AccessToken) ValidAt(now time.Time, margin time.Duration) bool {
	if t == nil || t.Value == "" {
		return false
	}
	return now.Before(t.ExpiresAt.Add(-margin))
}

// TokenStore holds at most one cached access token.
// Load returns (nil, nil) when nothing is cached.
type TokenStore interface {
	Load(ctx context.Context) (*AccessToken, error)
	Save(ctx context.Context, token AccessToken) error
}
