package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/splitledger/internal/domain"
)

// BalanceCache implements usecase.BalanceCache using Redis.
//
// Each user has a generation counter. Summaries are stored under a key that
// includes the generation they were computed for, and Invalidate increments the
// counter, so a summary computed before a write can never be served after it.
type BalanceCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewBalanceCache creates a new BalanceCache whose entries live for ttl.
func NewBalanceCache(client *redis.Client, ttl time.Duration) *BalanceCache {
	return &BalanceCache{
		client: client,
		prefix: "balance:",
		ttl:    ttl,
	}
}

func (c *BalanceCache) generationKey(userID string) string {
	return c.prefix + "gen:" + userID
}

func (c *BalanceCache) summaryKey(userID string, generation int64) string {
	return c.prefix + userID + ":" + strconv.FormatInt(generation, 10)
}

// Get returns the summary cached for the user's current generation.
func (c *BalanceCache) Get(ctx context.Context, userID string) (*domain.BalanceSummary, int64, bool, error) {
	generation, err := c.client.Get(ctx, c.generationKey(userID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, err
	}

	raw, err := c.client.Get(ctx, c.summaryKey(userID, generation)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, generation, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}

	var summary domain.BalanceSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		// unreadable entries are treated as a miss and overwritten
		return nil, generation, false, nil
	}

	return &summary, generation, true, nil
}

// Set stores summary under generation.
func (c *BalanceCache) Set(ctx context.Context, summary *domain.BalanceSummary, generation int64) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.summaryKey(summary.UserID, generation), raw, c.ttl).Err()
}

// Invalidate advances the generation of every user.
func (c *BalanceCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range userIDs {
			pipe.Incr(ctx, c.generationKey(id))
		}
		return nil
	})
	return err
}
