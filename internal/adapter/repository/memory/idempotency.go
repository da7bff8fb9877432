package memory

import (
	"context"
	"sync"
	"time"

	"github.com/iho/splitledger/internal/usecase"
)

// IdempotencyStore implements usecase.IdempotencyStore in process memory.
type IdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]idempotencyEntry
	now     func() time.Time
}

type idempotencyEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		entries: make(map[string]idempotencyEntry),
		now:     time.Now,
	}
}

// CheckAndSet claims key or returns the value already stored under it.
func (s *IdempotencyStore) CheckAndSet(_ context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && s.now().Before(e.expiresAt) {
		return true, append([]byte(nil), e.value...), nil
	}

	value := []byte(usecase.IdempotencyPending)
	if response != nil {
		value = append([]byte(nil), response...)
	}
	s.entries[key] = idempotencyEntry{value: value, expiresAt: s.now().Add(ttl)}

	return false, nil, nil
}

// Update stores the final response for key.
func (s *IdempotencyStore) Update(_ context.Context, key string, response []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = idempotencyEntry{value: append([]byte(nil), response...), expiresAt: s.now().Add(ttl)}
	return nil
}

// Release forgets key.
func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}
