package cache

import (
	"context"
	"sync"
	"time"

	"github.com/globoesim/gateway/internal/domain/esim"
)

// idempotencyEntry is a reserved key; order is nil until the purchase completes
type idempotencyEntry struct {
	expiresAt time.Time
	order     *esim.Order
}

// InMemoryIdempotencyStore keeps order idempotency state in process memory.
// Retries that land on another instance are not deduplicated.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	entries   map[string]idempotencyEntry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore starts a store that sweeps expired keys every
// five minutes until Close.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := newInMemoryIdempotencyStore(time.Now)

	store.wg.Add(1)
	go store.cleanupLoop(5 * time.Minute)

	return store
}

func newInMemoryIdempotencyStore(now func() time.Time) *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{
		entries:  make(map[string]idempotencyEntry),
		now:      now,
		stopChan: make(chan struct{}),
	}
}

// Reserve claims key. It returns false while an unexpired entry holds it.
func (s *InMemoryIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, exists := s.entries[key]; exists && now.Before(e.expiresAt) {
		return false, nil
	}

	s.entries[key] = idempotencyEntry{expiresAt: now.Add(ttl)}
	return true, nil
}

// Complete stores a copy of order under key
func (s *InMemoryIdempotencyStore) Complete(ctx context.Context, key string, order esim.Order, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = idempotencyEntry{
		expiresAt: s.now().Add(ttl),
		order:     &order,
	}
	return nil
}

// Lookup returns the order stored under key, or nil
func (s *InMemoryIdempotencyStore) Lookup(ctx context.Context, key string) (*esim.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[key]
	if !exists || !s.now().Before(e.expiresAt) || e.order == nil {
		return nil, nil
	}
	order := *e.order
	return &order, nil
}

// Release removes a pending reservation. Completed orders are kept.
func (s *InMemoryIdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && e.order == nil {
		delete(s.entries, key)
	}
	return nil
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (s *InMemoryIdempotencyStore) cleanupLoop(every time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired entries from the store
func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Size returns the number of held keys, expired ones included until swept
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Ensure InMemoryIdempotencyStore implements IdempotencyStore
var _ esim.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
