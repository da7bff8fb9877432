package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}

func TestTxManager(t *testing.T) {
	boom := errors.New("connection lost")

	tests := []struct {
		name    string
		expect  func(pool pgxmock.PgxPoolIface)
		run     func(ctx context.Context, m *TxManager) error
		wantErr error
	}{
		{
			name: "commit",
			expect: func(pool pgxmock.PgxPoolIface) {
				pool.ExpectBegin()
				pool.ExpectCommit()
			},
			run: func(ctx context.Context, m *TxManager) error {
				tx, err := m.Begin(ctx)
				if err != nil {
					return err
				}
				return tx.Commit(ctx)
			},
		},
		{
			name: "rollback",
			expect: func(pool pgxmock.PgxPoolIface) {
				pool.ExpectBegin()
				pool.ExpectRollback()
			},
			run: func(ctx context.Context, m *TxManager) error {
				tx, err := m.Begin(ctx)
				if err != nil {
					return err
				}
				return tx.Rollback(ctx)
			},
		},
		{
			name: "begin failure",
			expect: func(pool pgxmock.PgxPoolIface) {
				pool.ExpectBegin().WillReturnError(boom)
			},
			run: func(ctx context.Context, m *TxManager) error {
				_, err := m.Begin(ctx)
				return err
			},
			wantErr: boom,
		},
		{
			name: "commit failure",
			expect: func(pool pgxmock.PgxPoolIface) {
				pool.ExpectBegin()
				pool.ExpectCommit().WillReturnError(boom)
			},
			run: func(ctx context.Context, m *TxManager) error {
				tx, err := m.Begin(ctx)
				if err != nil {
					return err
				}
				return tx.Commit(ctx)
			},
			wantErr: boom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := newMockPool(t)
			tt.expect(pool)

			err := tt.run(context.Background(), newTxManagerWithPool(pool))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assertExpectations(t, pool)
		})
	}
}

func TestPgxTxFromRejectsForeignTransaction(t *testing.T) {
	if _, err := pgxTxFrom(foreignTx{}); !errors.Is(err, ErrForeignTx) {
		t.Fatalf("expected ErrForeignTx, got %v", err)
	}
}

type foreignTx struct{}

func (foreignTx) Commit(context.Context) error   { return nil }
func (foreignTx) Rollback(context.Context) error { return nil }
