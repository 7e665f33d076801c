package esim

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/globoesim/gateway/internal/domain/esim"
)

// MockGateway is a mock implementation of esim.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetCatalog(ctx context.Context, country string) (esim.Catalog, error) {
	args := m.Called(ctx, country)
	return args.Get(0).(esim.Catalog), args.Error(1)
}

func (m *MockGateway) CreateOrder(ctx context.Context, req esim.OrderRequest) (esim.Order, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(esim.Order), args.Error(1)
}

var _ esim.Gateway = (*MockGateway)(nil)

// MockIdempotencyStore is a mock implementation of esim.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Complete(ctx context.Context, key string, order esim.Order, ttl time.Duration) error {
	args := m.Called(ctx, key, order, ttl)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Lookup(ctx context.Context, key string) (*esim.Order, error) {
	args := m.Called(ctx, key)
	order, _ := args.Get(0).(*esim.Order)
	return order, args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

var _ esim.IdempotencyStore = (*MockIdempotencyStore)(nil)
