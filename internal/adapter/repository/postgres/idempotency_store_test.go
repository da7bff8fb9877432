package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/splitledger/internal/usecase"
)

func newTestIdempotencyStore(pool pgxmock.PgxPoolIface) *IdempotencyStore {
	store := NewIdempotencyStore(pool)
	store.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return store
}

func TestIdempotencyStore_ClaimsNewKeyAsPending(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectQuery(`INSERT INTO idempotency_keys`).
		WithArgs("bob:/api/v1/settlements:k1", []byte(usecase.IdempotencyPending), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pool.NewRows([]string{"key"}).AddRow("bob:/api/v1/settlements:k1"))

	exists, cached, err := newTestIdempotencyStore(pool).CheckAndSet(context.Background(), "bob:/api/v1/settlements:k1", nil, time.Hour)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Nil(t, cached)
	assertExpectations(t, pool)
}

func TestIdempotencyStore_ReturnsStoredResponse(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectQuery(`INSERT INTO idempotency_keys`).
		WithArgs("k1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	pool.ExpectQuery(`SELECT response FROM idempotency_keys`).
		WithArgs("k1", pgxmock.AnyArg()).
		WillReturnRows(pool.NewRows([]string{"response"}).AddRow([]byte(`{"status":201}`)))

	exists, cached, err := newTestIdempotencyStore(pool).CheckAndSet(context.Background(), "k1", nil, time.Hour)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, `{"status":201}`, string(cached))
	assertExpectations(t, pool)
}

func TestIdempotencyStore_VanishedKeyIsPending(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectQuery(`INSERT INTO idempotency_keys`).
		WithArgs("k1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	pool.ExpectQuery(`SELECT response FROM idempotency_keys`).
		WithArgs("k1", pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	exists, cached, err := newTestIdempotencyStore(pool).CheckAndSet(context.Background(), "k1", nil, time.Hour)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, usecase.IdempotencyPending, string(cached))
	assertExpectations(t, pool)
}

func TestIdempotencyStore_UpdateReleaseAndPurge(t *testing.T) {
	pool := newMockPool(t)
	store := newTestIdempotencyStore(pool)
	ctx := context.Background()

	pool.ExpectExec(`INSERT INTO idempotency_keys`).
		WithArgs("k1", []byte(`{"status":201}`), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectExec(`DELETE FROM idempotency_keys WHERE key`).
		WithArgs("k2").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	pool.ExpectExec(`DELETE FROM idempotency_keys WHERE expires_at`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	require.NoError(t, store.Update(ctx, "k1", []byte(`{"status":201}`), time.Hour))
	require.NoError(t, store.Release(ctx, "k2"))
	require.NoError(t, store.Purge(ctx))
	assertExpectations(t, pool)
}
