package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// FindConservationViolations lists expenses whose shares do not sum to the total
// or contain a share in an invalid state.
func (r *LedgerRepository) FindConservationViolations(ctx context.Context) ([]domain.ConservationViolation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.total_amount, COALESCE(SUM(s.share_amount), 0),
		       COALESCE(SUM(CASE WHEN s.paid_amount < 0 OR s.paid_amount > s.share_amount
		                          OR (s.status = 'settled') <> (s.paid_amount = s.share_amount)
		                         THEN 1 ELSE 0 END), 0)
		FROM expenses e
		LEFT JOIN expense_shares s ON s.expense_id = e.id
		GROUP BY e.id, e.total_amount
		ORDER BY e.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	violations := make([]domain.ConservationViolation, 0)
	for rows.Next() {
		var (
			id              string
			total, sum, bad int64
		)
		if err := rows.Scan(&id, &total, &sum, &bad); err != nil {
			return nil, err
		}
		if total == sum && bad == 0 {
			continue
		}

		reason := fmt.Sprintf("%d shares with invalid paid amount or status", bad)
		if total != sum {
			reason = fmt.Sprintf("shares sum to %s, expense total is %s",
				fromMinor(sum).StringFixed(domain.AmountPlaces), fromMinor(total).StringFixed(domain.AmountPlaces))
		}

		violations = append(violations, domain.ConservationViolation{
			ExpenseID:   id,
			TotalAmount: fromMinor(total),
			ShareSum:    fromMinor(sum),
			Reason:      reason,
		})
	}
	return violations, rows.Err()
}

// PairTotals sums settlements from payer to creditor and the amounts paid on the
// payer's shares of the creditor's expenses.
func (r *LedgerRepository) PairTotals(ctx context.Context, payerID, creditorID string) (settled, applied decimal.Decimal, err error) {
	var s, a int64
	err = r.db.QueryRowContext(ctx, `
		SELECT
		    (SELECT COALESCE(SUM(amount), 0) FROM settlements WHERE from_user_id = ?1 AND to_user_id = ?2),
		    (SELECT COALESCE(SUM(s.paid_amount), 0) FROM expense_shares s
		     JOIN expenses e ON e.id = s.expense_id
		     WHERE s.user_id = ?1 AND e.created_by = ?2)`,
		payerID, creditorID,
	).Scan(&s, &a)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return fromMinor(s), fromMinor(a), nil
}
