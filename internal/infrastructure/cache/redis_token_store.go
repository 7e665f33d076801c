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

// DefaultTokenKey is the Redis key holding the provider access token
const DefaultTokenKey = "gateway:airalo:access_token"

// RedisTokenStore implements TokenStore using Redis
// This is suitable for distributed deployments where multiple instances
// share one provider credential
type RedisTokenStore struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisTokenStore creates a new Redis-based token store
func NewRedisTokenStore(cfg RedisConfig) (*RedisTokenStore, error) {
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

	return NewRedisTokenStoreWithClient(client, DefaultTokenKey), nil
}

// NewRedisTokenStoreWithClient creates a store with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisTokenStoreWithClient(client *redis.Client, key string) *RedisTokenStore {
	if key == "" {
		key = DefaultTokenKey
	}
	return &RedisTokenStore{
		client: client,
		key:    key,
		now:    time.Now,
	}
}

// Load returns the cached token, or nil when the key is absent
func (s *RedisTokenStore) Load(ctx context.Context) (*esim.AccessToken, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}

	var token esim.AccessToken
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return &token, nil
}

// Save stores the token until it expires. Already expired tokens are not stored.
func (s *RedisTokenStore) Save(ctx context.Context, token esim.AccessToken) error {
	ttl := token.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := s.client.Set(ctx, s.key, string(raw), ttl).Err(); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisTokenStore) Close() error {
	return s.client.Close()
}

// Ensure RedisTokenStore implements TokenStore
var _ esim.TokenStore = (*RedisTokenStore)(nil)
