package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/splitledger/internal/infrastructure/postgres/generated"
	"github.com/iho/splitledger/internal/usecase"
)

// IdempotencyStore implements usecase.IdempotencyStore on the idempotency_keys
// table, so replicas sharing a database share claimed keys.
type IdempotencyStore struct {
	queries *generated.Queries
	now     func() time.Time
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(db generated.DBTX) *IdempotencyStore {
	return &IdempotencyStore{queries: generated.New(db), now: time.Now}
}

// CheckAndSet claims key or returns the value already stored under it.
// An expired row is taken over by the claim.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	value := []byte(usecase.IdempotencyPending)
	if response != nil {
		value = response
	}
	now := s.now().UTC()

	_, err := s.queries.ClaimIdempotencyKey(ctx, generated.ClaimIdempotencyKeyParams{
		Key:       key,
		Response:  value,
		ExpiresAt: timeToPgTimestamptz(now.Add(ttl)),
		Now:       timeToPgTimestamptz(now),
	})
	if err == nil {
		return false, nil, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, nil, err
	}

	existing, err := s.queries.GetIdempotencyResponse(ctx, generated.GetIdempotencyResponseParams{
		Key: key,
		Now: timeToPgTimestamptz(now),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		// released between the two statements; the owner is still finishing
		return true, []byte(usecase.IdempotencyPending), nil
	}
	if err != nil {
		return false, nil, err
	}

	return true, existing, nil
}

// Update stores the final response for key.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.queries.UpdateIdempotencyResponse(ctx, generated.UpdateIdempotencyResponseParams{
		Key:       key,
		Response:  response,
		ExpiresAt: timeToPgTimestamptz(s.now().UTC().Add(ttl)),
	})
}

// Release forgets key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.queries.DeleteIdempotencyKey(ctx, key)
}

// Purge deletes expired keys.
func (s *IdempotencyStore) Purge(ctx context.Context) error {
	return s.queries.DeleteExpiredIdempotencyKeys(ctx, timeToPgTimestamptz(s.now().UTC()))
}
