package esim

import (
	"context"
	"errors"
	"time"
)

// MaxIdempotencyKeyLength bounds client-supplied idempotency keys.
const MaxIdempotencyKeyLength = 255

// ErrOrderInProgress is returned when an order under the same idempotency key
// has been reserved but has not completed yet.
var ErrOrderInProgress = errors.New("esim: order with this idempotency key is in progress")

// IdempotencyStore remembers orders placed under a client-supplied key so a
// retried purchase replays the first result instead of buying again.
type IdempotencyStore interface {
	// Reserve claims key for ttl. It reports false when key is already held.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Complete records the order placed under a reserved key.
	Complete(ctx context.Context, key string, order Order, ttl time.Duration) error
	// Lookup returns the order recorded under key. It returns (nil, nil) when
	// the key is unknown or the order is still in flight.
	Lookup(ctx context.Context, key string) (*Order, error)
	// Release drops a reservation so the key can be retried.
	Release(ctx context.Context, key string) error
}
