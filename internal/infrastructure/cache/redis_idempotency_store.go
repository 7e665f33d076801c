package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/globoesim/gateway/internal/domain/esim"
)

const (
	// DefaultIdempotencyKeyPrefix namespaces order idempotency keys
	DefaultIdempotencyKeyPrefix = "gateway:order:idempotency:"
	// pendingMarker is stored while the order is in flight
	pendingMarker = "pending"
)

// releasePending deletes KEYS[1] only while it still holds ARGV[1], so a late
// release never drops a completed order.
var releasePending = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisIdempotencyStore shares order idempotency state across gateway
// instances. A key holds "pending" while the order is in flight, then the
// JSON-encoded order.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisIdempotencyStore creates a new Redis-based idempotency store
func NewRedisIdempotencyStore(cfg RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisIdempotencyStoreWithClient(client, ""), nil
}

// NewRedisIdempotencyStoreWithClient creates a store with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisIdempotencyStoreWithClient(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = DefaultIdempotencyKeyPrefix
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Reserve claims key with SETNX so only one instance places the order
func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, pendingMarker, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	return ok, nil
}

// Complete replaces the reservation with the encoded order
func (s *RedisIdempotencyStore) Complete(ctx context.Context, key string, order esim.Order, ttl time.Duration) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to encode order: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, string(data), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store order: %w", err)
	}
	return nil
}

// Lookup returns the stored order; nil while the key is pending or absent
func (s *RedisIdempotencyStore) Lookup(ctx context.Context, key string) (*esim.Order, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	if string(data) == pendingMarker {
		return nil, nil
	}

	var order esim.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("failed to decode stored order: %w", err)
	}
	return &order, nil
}

// Release deletes a pending reservation. Completed orders are kept.
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := releasePending.Run(ctx, s.client, []string{s.keyPrefix + key}, pendingMarker).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

// Ensure RedisIdempotencyStore implements IdempotencyStore
var _ esim.IdempotencyStore = (*RedisIdempotencyStore)(nil)
