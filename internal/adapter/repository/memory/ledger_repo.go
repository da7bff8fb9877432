package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// FindConservationViolations validates every stored expense.
func (r *LedgerRepository) FindConservationViolations(_ context.Context) ([]domain.ConservationViolation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []domain.ConservationViolation
	for _, e := range r.store.expenses {
		full := r.store.expenseWithShares(e)
		if err := full.Validate(); err != nil {
			sum := decimal.Zero
			for _, s := range full.Shares {
				sum = sum.Add(s.ShareAmount)
			}
			out = append(out, domain.ConservationViolation{
				ExpenseID:   e.ID,
				TotalAmount: e.TotalAmount,
				ShareSum:    sum,
				Reason:      err.Error(),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ExpenseID < out[j].ExpenseID })
	return out, nil
}

// PairTotals sums settlements from payer to creditor and the amounts paid on the
// payer's shares of the creditor's expenses.
func (r *LedgerRepository) PairTotals(_ context.Context, payerID, creditorID string) (decimal.Decimal, decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	settled := decimal.Zero
	for _, s := range r.store.settlements {
		if s.FromUserID == payerID && s.ToUserID == creditorID {
			settled = settled.Add(s.Amount)
		}
	}

	applied := decimal.Zero
	for _, s := range r.store.shares {
		if s.UserID != payerID {
			continue
		}
		if e, ok := r.store.expenses[s.ExpenseID]; ok && e.CreatedBy == creditorID {
			applied = applied.Add(s.PaidAmount)
		}
	}

	return settled, applied, nil
}
