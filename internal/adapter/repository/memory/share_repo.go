package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// ShareRepository implements usecase.ShareRepository.
type ShareRepository struct {
	store *Store
}

// NewShareRepository creates a new ShareRepository.
func NewShareRepository(store *Store) *ShareRepository {
	return &ShareRepository{store: store}
}

// CreateBatch stages share rows.
func (r *ShareRepository) CreateBatch(_ context.Context, tx usecase.Transaction, shares []*domain.ExpenseShare) error {
	mtx, err := r.store.txFrom(tx)
	if err != nil {
		return err
	}

	rows := make([]*domain.ExpenseShare, 0, len(shares))
	for _, s := range shares {
		rows = append(rows, cloneShare(s))
	}

	mtx.stage(func() {
		for _, row := range rows {
			r.store.shares[row.ID] = row
			r.store.sharesByExpense[row.ExpenseID] = append(r.store.sharesByExpense[row.ExpenseID], row.ID)
		}
	})
	return nil
}

// ListOwedForUpdate reads under the transaction's write lock.
func (r *ShareRepository) ListOwedForUpdate(_ context.Context, tx usecase.Transaction, debtorID, creditorID string) ([]*domain.ExpenseShare, error) {
	if _, err := r.store.txFrom(tx); err != nil {
		return nil, err
	}

	var out []*domain.ExpenseShare
	for _, s := range r.store.shares {
		if s.UserID != debtorID || s.Status != domain.ShareStatusOwed {
			continue
		}
		e, ok := r.store.expenses[s.ExpenseID]
		if !ok || e.CreatedBy != creditorID {
			continue
		}
		c := cloneShare(s)
		c.CreditorID = e.CreatedBy
		out = append(out, c)
	}

	domain.SortFIFO(out)
	return out, nil
}

// UpdatePayment stages the new paid amount and status.
func (r *ShareRepository) UpdatePayment(_ context.Context, tx usecase.Transaction, id string, paid decimal.Decimal, status domain.ShareStatus) error {
	mtx, err := r.store.txFrom(tx)
	if err != nil {
		return err
	}

	current, ok := r.store.shares[id]
	if !ok {
		return domain.ErrInconsistentShares
	}

	next := cloneShare(current)
	next.PaidAmount = paid
	next.Status = status
	if err := next.Validate(); err != nil {
		return err
	}

	mtx.stage(func() {
		r.store.shares[id] = next
	})
	return nil
}

// ListOutstandingForUser returns owed shares where userID is debtor or creditor.
func (r *ShareRepository) ListOutstandingForUser(_ context.Context, userID string) ([]*domain.ExpenseShare, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.ExpenseShare
	for _, s := range r.store.shares {
		if s.Status != domain.ShareStatusOwed {
			continue
		}
		e, ok := r.store.expenses[s.ExpenseID]
		if !ok {
			continue
		}
		if s.UserID != userID && e.CreatedBy != userID {
			continue
		}
		c := cloneShare(s)
		c.CreditorID = e.CreatedBy
		out = append(out, c)
	}

	domain.SortFIFO(out)
	return out, nil
}
