package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/globoesim/gateway/internal/domain/esim"
	"github.com/globoesim/gateway/internal/infrastructure/config"
)

// StoreFactory creates the token and idempotency stores based on configuration
type StoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

func (f *StoreFactory) redisConnConfig() RedisConfig {
	return RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}
}

// CreateTokenStore creates the configured token store. When Redis is disabled the
// token lives in process memory; each instance then exchanges its own credentials.
func (f *StoreFactory) CreateTokenStore() (esim.TokenStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory token store")
		return NewMemoryTokenStore(), nil
	}

	store, err := NewRedisTokenStore(f.redisConnConfig())
	if err == nil {
		f.logger.Info("using Redis token store")
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for token store but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory token store. "+
		"Each instance will exchange credentials independently.",
		zap.Error(err),
	)
	return NewMemoryTokenStore(), nil
}

// CreateIdempotencyStore creates the configured order idempotency store.
// The in-memory store only deduplicates retries reaching the same instance.
func (f *StoreFactory) CreateIdempotencyStore() (esim.IdempotencyStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(f.redisConnConfig())
	if err == nil {
		f.logger.Info("using Redis idempotency store")
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for idempotency store but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
