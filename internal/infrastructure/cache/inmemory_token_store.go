package cache

import (
	"context"
	"sync"

	"github.com/globoesim/gateway/internal/domain/esim"
)

// InMemoryTokenStore implements TokenStore with a mutex guarded value
// This is suitable for single-instance deployments and testing
type InMemoryTokenStore struct {
	mu    sync.RWMutex
	token *esim.AccessToken
}

// NewMemoryTokenStore creates an empty in-memory token store
func NewMemoryTokenStore() *InMemoryTokenStore {
	return &InMemoryTokenStore{}
}

// Load returns a copy of the cached token, or nil when nothing is cached
func (s *InMemoryTokenStore) Load(ctx context.Context) (*esim.AccessToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == nil {
		return nil, nil
	}
	token := *s.token
	return &token, nil
}

// Save replaces the cached token
func (s *InMemoryTokenStore) Save(ctx context.Context, token esim.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = &token
	return nil
}

// Ensure InMemoryTokenStore implements TokenStore
var _ esim.TokenStore = (*InMemoryTokenStore)(nil)
