package memory

import (
	"context"
	"sort"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	store *Store
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(store *Store) *ExpenseRepository {
	return &ExpenseRepository{store: store}
}

// Create stages the expense row. Shares are written by ShareRepository.CreateBatch.
func (r *ExpenseRepository) Create(_ context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	mtx, err := r.store.txFrom(tx)
	if err != nil {
		return err
	}

	row := cloneExpense(expense)
	mtx.stage(func() {
		r.store.expenses[row.ID] = row
	})
	return nil
}

// GetByID returns one expense with its shares.
func (r *ExpenseRepository) GetByID(_ context.Context, id string) (*domain.Expense, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.expenses[id]
	if !ok {
		return nil, domain.ErrExpenseNotFound
	}
	return r.store.expenseWithShares(e), nil
}

// ListByGroup returns a group's expenses, newest first.
func (r *ExpenseRepository) ListByGroup(_ context.Context, groupID string, limit, offset int) ([]*domain.Expense, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*domain.Expense
	for _, e := range r.store.expenses {
		if e.GroupID != nil && *e.GroupID == groupID {
			matched = append(matched, e)
		}
	}

	return r.page(matched, limit, offset), nil
}

// ListByParticipant returns expenses userID created or holds a share in, newest first.
func (r *ExpenseRepository) ListByParticipant(_ context.Context, userID string, limit int) ([]*domain.Expense, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*domain.Expense
	for _, e := range r.store.expenses {
		if e.CreatedBy == userID || r.hasShare(e.ID, userID) {
			matched = append(matched, e)
		}
	}

	return r.page(matched, limit, 0), nil
}

func (r *ExpenseRepository) hasShare(expenseID, userID string) bool {
	for _, id := range r.store.sharesByExpense[expenseID] {
		if r.store.shares[id].UserID == userID {
			return true
		}
	}
	return false
}

func (r *ExpenseRepository) page(expenses []*domain.Expense, limit, offset int) []*domain.Expense {
	sort.Slice(expenses, func(i, j int) bool {
		if !expenses[i].CreatedAt.Equal(expenses[j].CreatedAt) {
			return expenses[i].CreatedAt.After(expenses[j].CreatedAt)
		}
		return expenses[i].ID > expenses[j].ID
	})

	if offset >= len(expenses) {
		return []*domain.Expense{}
	}
	expenses = expenses[offset:]
	if limit > 0 && limit < len(expenses) {
		expenses = expenses[:limit]
	}

	out := make([]*domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, r.store.expenseWithShares(e))
	}
	return out
}
