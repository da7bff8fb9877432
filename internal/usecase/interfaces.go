package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
)

// ExpenseRepository defines data access for expenses. Reads return expenses with
// their shares attached.
type ExpenseRepository interface {
	Create(ctx context.Context, tx Transaction, expense *domain.Expense) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	ListByGroup(ctx context.Context, groupID string, limit, offset int) ([]*domain.Expense, error)
	ListByParticipant(ctx context.Context, userID string, limit int) ([]*domain.Expense, error)
}

// ShareRepository defines data access for expense shares.
// Shares returned by the list methods carry CreditorID.
type ShareRepository interface {
	CreateBatch(ctx context.Context, tx Transaction, shares []*domain.ExpenseShare) error
	// ListOwedForUpdate locks debtorID's owed shares on expenses created by creditorID,
	// oldest first.
	ListOwedForUpdate(ctx context.Context, tx Transaction, debtorID, creditorID string) ([]*domain.ExpenseShare, error)
	UpdatePayment(ctx context.Context, tx Transaction, id string, paid decimal.Decimal, status domain.ShareStatus) error
	// ListOutstandingForUser returns, in one read, the owed shares where userID is the
	// debtor or the creditor.
	ListOutstandingForUser(ctx context.Context, userID string) ([]*domain.ExpenseShare, error)
}

// SettlementRepository defines data access for settlements.
type SettlementRepository interface {
	Create(ctx context.Context, tx Transaction, settlement *domain.Settlement) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Settlement, error)
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	FindConservationViolations(ctx context.Context) ([]domain.ConservationViolation, error)
	PairTotals(ctx context.Context, payerID, creditorID string) (settled, applied decimal.Decimal, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// UserDirectory resolves display names from the identity provider's records.
// Unknown ids are simply absent from the result.
type UserDirectory interface {
	GetDisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Locker serializes work on a key across processes.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

// BalanceCache stores computed balance summaries.
// Get reports the user's current generation even on a miss; Set stores under
// that generation so a summary computed before an Invalidate is never served after it.
type BalanceCache interface {
	Get(ctx context.Context, userID string) (summary *domain.BalanceSummary, generation int64, found bool, err error)
	Set(ctx context.Context, summary *domain.BalanceSummary, generation int64) error
	Invalidate(ctx context.Context, userIDs ...string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key after a failed request.
	Release(ctx context.Context, key string) error
}
