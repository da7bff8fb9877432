package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/splitledger/internal/domain"
)

var shareColumns = []string{"id", "expense_id", "user_id", "share_amount", "paid_amount", "status", "created_at", "creditor_id"}

func beginTx(t *testing.T, pool pgxmock.PgxPoolIface) *Tx {
	t.Helper()
	pool.ExpectBegin()

	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	require.NoError(t, err)
	return tx.(*Tx)
}

func TestShareRepository_ListOwedForUpdateLocksRows(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	pool.ExpectQuery(`FOR UPDATE OF s`).
		WithArgs("bob", "alice").
		WillReturnRows(pool.NewRows(shareColumns).
			AddRow("s1", "e1", "bob", "100.00", "60.00", "owed", created, "alice").
			AddRow("s2", "e2", "bob", "50.00", "0.00", "owed", created.Add(time.Hour), "alice"))
	pool.ExpectRollback()

	shares, err := NewShareRepository(pool).ListOwedForUpdate(context.Background(), tx, "bob", "alice")
	require.NoError(t, err)
	require.Len(t, shares, 2)

	assert.Equal(t, "s1", shares[0].ID)
	assert.Equal(t, "alice", shares[0].CreditorID)
	assert.True(t, shares[0].ShareAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, shares[0].Due().Equal(decimal.NewFromInt(40)))
	assert.Equal(t, domain.ShareStatusOwed, shares[1].Status)
	assert.True(t, shares[1].CreatedAt.Equal(created.Add(time.Hour)))

	require.NoError(t, tx.Rollback(context.Background()))
	assertExpectations(t, pool)
}

func TestShareRepository_UpdatePaymentRequiresOneRow(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec(`UPDATE expense_shares SET paid_amount`).
		WithArgs("s1", pgxmock.AnyArg(), "settled").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	pool.ExpectExec(`UPDATE expense_shares SET paid_amount`).
		WithArgs("missing", pgxmock.AnyArg(), "owed").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewShareRepository(pool)
	require.NoError(t, repo.UpdatePayment(context.Background(), tx, "s1", decimal.NewFromInt(100), domain.ShareStatusSettled))

	err := repo.UpdatePayment(context.Background(), tx, "missing", decimal.NewFromInt(1), domain.ShareStatusOwed)
	assert.ErrorIs(t, err, domain.ErrInconsistentShares)

	assertExpectations(t, pool)
}

func TestShareRepository_CreateBatch(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)
	now := time.Now().UTC()

	shares := []*domain.ExpenseShare{
		{ID: "s1", ExpenseID: "e1", UserID: "alice", ShareAmount: decimal.NewFromInt(50), PaidAmount: decimal.NewFromInt(50), Status: domain.ShareStatusSettled, CreatedAt: now},
		{ID: "s2", ExpenseID: "e1", UserID: "bob", ShareAmount: decimal.NewFromInt(50), PaidAmount: decimal.Zero, Status: domain.ShareStatusOwed, CreatedAt: now},
	}
	for _, s := range shares {
		pool.ExpectExec(`INSERT INTO expense_shares`).
			WithArgs(s.ID, s.ExpenseID, s.UserID, pgxmock.AnyArg(), pgxmock.AnyArg(), string(s.Status), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	require.NoError(t, NewShareRepository(pool).CreateBatch(context.Background(), tx, shares))
	assertExpectations(t, pool)
}

func TestShareRepository_ListOutstandingForUser(t *testing.T) {
	pool := newMockPool(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	pool.ExpectQuery(`s.user_id = \$1 OR e.created_by = \$1`).
		WithArgs("alice").
		WillReturnRows(pool.NewRows(shareColumns).
			AddRow("s1", "e1", "bob", "30.00", "10.00", "owed", created, "alice").
			AddRow("s2", "e2", "alice", "5.00", "0.00", "owed", created, "carol"))

	shares, err := NewShareRepository(pool).ListOutstandingForUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, shares, 2)

	summary := domain.AggregateBalances("alice", shares, nil)
	assert.True(t, summary.TotalOwed.Equal(decimal.NewFromInt(20)))
	assert.True(t, summary.TotalOwe.Equal(decimal.NewFromInt(5)))

	assertExpectations(t, pool)
}

func TestExpenseRepository_GetByIDAttachesShares(t *testing.T) {
	pool := newMockPool(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	pool.ExpectQuery(`FROM expenses WHERE id = \$1`).
		WithArgs("e1").
		WillReturnRows(pool.NewRows([]string{"id", "group_id", "created_by", "total_amount", "currency", "note", "created_at"}).
			AddRow("e1", "trip", "alice", "100.00", "INR", "dinner", created))
	pool.ExpectQuery(`expense_id = ANY`).
		WithArgs([]string{"e1"}).
		WillReturnRows(pool.NewRows([]string{"id", "expense_id", "user_id", "share_amount", "paid_amount", "status", "created_at"}).
			AddRow("s1", "e1", "alice", "50.00", "50.00", "settled", created).
			AddRow("s2", "e1", "bob", "50.00", "0.00", "owed", created))

	e, err := NewExpenseRepository(pool).GetByID(context.Background(), "e1")
	require.NoError(t, err)

	require.NotNil(t, e.GroupID)
	assert.Equal(t, "trip", *e.GroupID)
	assert.True(t, e.TotalAmount.Equal(decimal.NewFromInt(100)))
	require.Len(t, e.Shares, 2)
	for _, s := range e.Shares {
		assert.Equal(t, "alice", s.CreditorID)
	}
	assert.NoError(t, e.Validate())

	assertExpectations(t, pool)
}

func TestExpenseRepository_GetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectQuery(`FROM expenses WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(pool.NewRows([]string{"id", "group_id", "created_by", "total_amount", "currency", "note", "created_at"}))

	_, err := NewExpenseRepository(pool).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrExpenseNotFound)
}

func TestExpenseRepository_ListByGroupEmpty(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectQuery(`WHERE group_id = \$1`).
		WithArgs(pgxmock.AnyArg(), int32(50), int32(0)).
		WillReturnRows(pool.NewRows([]string{"id", "group_id", "created_by", "total_amount", "currency", "note", "created_at"}))

	expenses, err := NewExpenseRepository(pool).ListByGroup(context.Background(), "trip", 50, 0)
	require.NoError(t, err)
	assert.Empty(t, expenses)

	// no share query for an empty page
	assertExpectations(t, pool)
}

func TestSettlementRepository_Create(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec(`INSERT INTO settlements`).
		WithArgs("st1", "bob", "alice", pgxmock.AnyArg(), "INR", "completed", "upi", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := NewSettlementRepository(pool).Create(context.Background(), tx, &domain.Settlement{
		ID:              "st1",
		FromUserID:      "bob",
		ToUserID:        "alice",
		Amount:          decimal.NewFromInt(60),
		Currency:        "INR",
		Status:          domain.SettlementStatusCompleted,
		PaymentMethodID: domain.PaymentMethodUPI,
		CreatedAt:       time.Now(),
	})
	require.NoError(t, err)
	assertExpectations(t, pool)
}

func TestLedgerRepository_FindConservationViolations(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectQuery(`HAVING`).
		WillReturnRows(pool.NewRows([]string{"id", "total_amount", "share_sum", "bad_shares"}).
			AddRow("e1", "100.00", "99.99", int64(0)).
			AddRow("e2", "10.00", "10.00", int64(1)))

	violations, err := NewLedgerRepository(pool).FindConservationViolations(context.Background())
	require.NoError(t, err)
	require.Len(t, violations, 2)
	assert.Equal(t, "shares sum to 99.99, expense total is 100.00", violations[0].Reason)
	assert.Contains(t, violations[1].Reason, "1 shares")
}

func TestLedgerRepository_PairTotals(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectQuery(`AS settled`).
		WithArgs("bob", "alice").
		WillReturnRows(pool.NewRows([]string{"settled", "applied"}).AddRow("100.00", "100.00"))

	settled, applied, err := NewLedgerRepository(pool).PairTotals(context.Background(), "bob", "alice")
	require.NoError(t, err)
	assert.True(t, settled.Equal(applied))
}

func TestUserDirectory_GetDisplayNames(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectQuery(`FROM users WHERE id = ANY`).
		WithArgs([]string{"alice", "bob"}).
		WillReturnRows(pool.NewRows([]string{"id", "name"}).AddRow("alice", "Alice"))

	names, err := NewUserDirectory(pool).GetDisplayNames(context.Background(), []string{"alice", "bob"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"alice": "Alice"}, names)
}

func TestOutboxRepository_QueryError(t *testing.T) {
	pool := newMockPool(t)
	boom := errors.New("connection reset")

	pool.ExpectQuery(`WHERE published = FALSE`).WithArgs(int32(10)).WillReturnError(boom)

	_, err := NewOutboxRepository(pool).GetUnpublished(context.Background(), 10)
	assert.ErrorIs(t, err, boom)
}

var outboxColumns = []string{"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published_at", "published"}

func TestOutboxRepository_GetUnpublishedDecodesPayload(t *testing.T) {
	pool := newMockPool(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	pool.ExpectQuery(`WHERE published = FALSE`).
		WithArgs(int32(defaultOutboxBatch)).
		WillReturnRows(pool.NewRows(outboxColumns).
			AddRow("ev1", "e1", "expense", domain.EventTypeExpenseCreated, []byte(`{"amount":"30.00"}`), created, pgtype.Timestamptz{}, false))

	events, err := NewOutboxRepository(pool).GetUnpublished(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "30.00", events[0].Payload["amount"])
	assert.Nil(t, events[0].PublishedAt)
}

func TestOutboxRepository_CorruptPayload(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectQuery(`WHERE published = FALSE`).
		WithArgs(int32(5)).
		WillReturnRows(pool.NewRows(outboxColumns).
			AddRow("ev1", "e1", "expense", domain.EventTypeExpenseCreated, []byte(`{not json`), time.Now(), pgtype.Timestamptz{}, false))

	_, err := NewOutboxRepository(pool).GetUnpublished(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ev1")
}

func TestOutboxRepository_RejectsForeignTx(t *testing.T) {
	pool := newMockPool(t)

	err := NewOutboxRepository(pool).Create(context.Background(), foreignTx{}, &domain.OutboxEvent{ID: "ev1"})
	assert.ErrorIs(t, err, ErrForeignTx)
}
