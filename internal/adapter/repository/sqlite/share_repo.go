package sqlite

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

const shareColumns = `id, expense_id, user_id, share_amount, paid_amount, status, created_at`

// ShareRepository implements usecase.ShareRepository.
type ShareRepository struct {
	db *sql.DB
}

// NewShareRepository creates a new ShareRepository.
func NewShareRepository(db *sql.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

// CreateBatch inserts share rows within a transaction.
func (r *ShareRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, shares []*domain.ExpenseShare) error {
	stx, err := sqlTxFrom(tx)
	if err != nil {
		return err
	}

	stmt, err := stx.PrepareContext(ctx, `INSERT INTO expense_shares (`+shareColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range shares {
		if _, err := stmt.ExecContext(ctx,
			s.ID,
			s.ExpenseID,
			s.UserID,
			toMinor(s.ShareAmount),
			toMinor(s.PaidAmount),
			string(s.Status),
			toMicros(s.CreatedAt),
		); err != nil {
			return err
		}
	}
	return nil
}

// ListOwedForUpdate reads debtor's owed shares on creditor's expenses in FIFO order.
// The IMMEDIATE transaction already holds the database write lock.
func (r *ShareRepository) ListOwedForUpdate(ctx context.Context, tx usecase.Transaction, debtorID, creditorID string) ([]*domain.ExpenseShare, error) {
	stx, err := sqlTxFrom(tx)
	if err != nil {
		return nil, err
	}

	rows, err := stx.QueryContext(ctx,
		`SELECT s.id, s.expense_id, s.user_id, s.share_amount, s.paid_amount, s.status, s.created_at, e.created_by
		 FROM expense_shares s JOIN expenses e ON e.id = s.expense_id
		 WHERE s.user_id = ? AND e.created_by = ? AND s.status = 'owed'
		 ORDER BY s.created_at, s.expense_id, s.id`,
		debtorID, creditorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSharesWithCreditor(rows)
}

// UpdatePayment sets a share's paid amount and status.
func (r *ShareRepository) UpdatePayment(ctx context.Context, tx usecase.Transaction, id string, paid decimal.Decimal, status domain.ShareStatus) error {
	stx, err := sqlTxFrom(tx)
	if err != nil {
		return err
	}

	res, err := stx.ExecContext(ctx,
		`UPDATE expense_shares SET paid_amount = ?, status = ? WHERE id = ?`,
		toMinor(paid), string(status), id,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return domain.ErrInconsistentShares
	}
	return nil
}

// ListOutstandingForUser returns owed shares where userID is the debtor or the creditor.
func (r *ShareRepository) ListOutstandingForUser(ctx context.Context, userID string) ([]*domain.ExpenseShare, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.expense_id, s.user_id, s.share_amount, s.paid_amount, s.status, s.created_at, e.created_by
		 FROM expense_shares s JOIN expenses e ON e.id = s.expense_id
		 WHERE s.status = 'owed' AND (s.user_id = ?1 OR e.created_by = ?1)
		 ORDER BY s.created_at, s.expense_id, s.id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSharesWithCreditor(rows)
}

func scanShare(row scanner) (*domain.ExpenseShare, error) {
	var (
		s             domain.ExpenseShare
		share, paid   int64
		status        string
		createdMicros int64
	)
	if err := row.Scan(&s.ID, &s.ExpenseID, &s.UserID, &share, &paid, &status, &createdMicros); err != nil {
		return nil, err
	}

	s.ShareAmount = fromMinor(share)
	s.PaidAmount = fromMinor(paid)
	s.Status = domain.ShareStatus(status)
	s.CreatedAt = fromMicros(createdMicros)
	return &s, nil
}

func scanSharesWithCreditor(rows *sql.Rows) ([]*domain.ExpenseShare, error) {
	shares := make([]*domain.ExpenseShare, 0)
	for rows.Next() {
		var (
			s             domain.ExpenseShare
			share, paid   int64
			status        string
			createdMicros int64
		)
		if err := rows.Scan(&s.ID, &s.ExpenseID, &s.UserID, &share, &paid, &status, &createdMicros, &s.CreditorID); err != nil {
			return nil, err
		}

		s.ShareAmount = fromMinor(share)
		s.PaidAmount = fromMinor(paid)
		s.Status = domain.ShareStatus(status)
		s.CreatedAt = fromMicros(createdMicros)
		shares = append(shares, &s)
	}
	return shares, rows.Err()
}
