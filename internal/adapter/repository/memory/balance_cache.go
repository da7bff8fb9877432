package memory

import (
	"context"
	"sync"
	"time"

	"github.com/iho/splitledger/internal/domain"
)

// BalanceCache implements usecase.BalanceCache in process memory.
type BalanceCache struct {
	mu          sync.Mutex
	ttl         time.Duration
	generations map[string]int64
	entries     map[string]cacheEntry
	now         func() time.Time
}

type cacheEntry struct {
	summary    *domain.BalanceSummary
	generation int64
	expiresAt  time.Time
}

// NewBalanceCache creates a cache whose entries live for ttl.
func NewBalanceCache(ttl time.Duration) *BalanceCache {
	return &BalanceCache{
		ttl:         ttl,
		generations: make(map[string]int64),
		entries:     make(map[string]cacheEntry),
		now:         time.Now,
	}
}

// Get returns the cached summary for the user's current generation.
func (c *BalanceCache) Get(_ context.Context, userID string) (*domain.BalanceSummary, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gen := c.generations[userID]
	entry, ok := c.entries[userID]
	if !ok || entry.generation != gen || c.now().After(entry.expiresAt) {
		return nil, gen, false, nil
	}
	return entry.summary, gen, true, nil
}

// Set stores summary unless the user has been invalidated since generation was read.
func (c *BalanceCache) Set(_ context.Context, summary *domain.BalanceSummary, generation int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[summary.UserID] != generation {
		return nil
	}
	c.entries[summary.UserID] = cacheEntry{
		summary:    summary,
		generation: generation,
		expiresAt:  c.now().Add(c.ttl),
	}
	return nil
}

// Invalidate bumps the generation of every user.
func (c *BalanceCache) Invalidate(_ context.Context, userIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range userIDs {
		c.generations[id]++
		delete(c.entries, id)
	}
	return nil
}
