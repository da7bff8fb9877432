package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// FindConservationViolations lists expenses whose shares do not sum to the total
// or contain a share outside 0 <= paid <= share.
func (r *LedgerRepository) FindConservationViolations(ctx context.Context) ([]domain.ConservationViolation, error) {
	rows, err := r.queries.FindConservationViolations(ctx)
	if err != nil {
		return nil, err
	}

	violations := make([]domain.ConservationViolation, 0, len(rows))
	for _, row := range rows {
		total := numericToDecimal(row.TotalAmount)
		sum := numericToDecimal(row.ShareSum)

		reason := fmt.Sprintf("%d shares with invalid paid amount or status", row.BadShares)
		if !total.Equal(sum) {
			reason = fmt.Sprintf("shares sum to %s, expense total is %s",
				sum.StringFixed(domain.AmountPlaces), total.StringFixed(domain.AmountPlaces))
		}

		violations = append(violations, domain.ConservationViolation{
			ExpenseID:   row.ID,
			TotalAmount: total,
			ShareSum:    sum,
			Reason:      reason,
		})
	}

	return violations, nil
}

// PairTotals sums settlements from payer to creditor and the amounts paid on the
// payer's shares of the creditor's expenses.
func (r *LedgerRepository) PairTotals(ctx context.Context, payerID, creditorID string) (settled, applied decimal.Decimal, err error) {
	row, err := r.queries.GetPairTotals(ctx, generated.GetPairTotalsParams{
		FromUserID: payerID,
		ToUserID:   creditorID,
	})
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(row.Settled), numericToDecimal(row.Applied), nil
}
