package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/postgres/generated"
	"github.com/iho/splitledger/internal/usecase"
)

// ShareRepository implements usecase.ShareRepository.
type ShareRepository struct {
	queries *generated.Queries
}

// NewShareRepository creates a new ShareRepository.
func NewShareRepository(db generated.DBTX) *ShareRepository {
	return &ShareRepository{queries: generated.New(db)}
}

// CreateBatch inserts share rows within a transaction.
func (r *ShareRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, shares []*domain.ExpenseShare) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}
	queries := generated.New(pgxTx)

	for _, s := range shares {
		if err := queries.CreateShare(ctx, generated.CreateShareParams{
			ID:          s.ID,
			ExpenseID:   s.ExpenseID,
			UserID:      s.UserID,
			ShareAmount: decimalToNumeric(s.ShareAmount),
			PaidAmount:  decimalToNumeric(s.PaidAmount),
			Status:      string(s.Status),
			CreatedAt:   timeToPgTimestamptz(s.CreatedAt),
		}); err != nil {
			return err
		}
	}

	return nil
}

// ListOwedForUpdate locks debtor's owed shares on creditor's expenses in FIFO order.
func (r *ShareRepository) ListOwedForUpdate(ctx context.Context, tx usecase.Transaction, debtorID, creditorID string) ([]*domain.ExpenseShare, error) {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return nil, err
	}

	rows, err := generated.New(pgxTx).ListOwedSharesForUpdate(ctx, generated.ListOwedSharesForUpdateParams{
		UserID:    debtorID,
		CreatedBy: creditorID,
	})
	if err != nil {
		return nil, err
	}

	shares := make([]*domain.ExpenseShare, 0, len(rows))
	for _, row := range rows {
		s := rowToShare(generated.ExpenseShare{
			ID:          row.ID,
			ExpenseID:   row.ExpenseID,
			UserID:      row.UserID,
			ShareAmount: row.ShareAmount,
			PaidAmount:  row.PaidAmount,
			Status:      row.Status,
			CreatedAt:   row.CreatedAt,
		})
		s.CreditorID = row.CreditorID
		shares = append(shares, s)
	}

	return shares, nil
}

// UpdatePayment sets a share's paid amount and status.
func (r *ShareRepository) UpdatePayment(ctx context.Context, tx usecase.Transaction, id string, paid decimal.Decimal, status domain.ShareStatus) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	n, err := generated.New(pgxTx).UpdateSharePayment(ctx, generated.UpdateSharePaymentParams{
		ID:         id,
		PaidAmount: decimalToNumeric(paid),
		Status:     string(status),
	})
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
	rows, err := r.queries.ListOutstandingSharesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	shares := make([]*domain.ExpenseShare, 0, len(rows))
	for _, row := range rows {
		s := rowToShare(generated.ExpenseShare{
			ID:          row.ID,
			ExpenseID:   row.ExpenseID,
			UserID:      row.UserID,
			ShareAmount: row.ShareAmount,
			PaidAmount:  row.PaidAmount,
			Status:      row.Status,
			CreatedAt:   row.CreatedAt,
		})
		s.CreditorID = row.CreditorID
		shares = append(shares, s)
	}

	return shares, nil
}

func rowToShare(row generated.ExpenseShare) *domain.ExpenseShare {
	return &domain.ExpenseShare{
		ID:          row.ID,
		ExpenseID:   row.ExpenseID,
		UserID:      row.UserID,
		ShareAmount: numericToDecimal(row.ShareAmount),
		PaidAmount:  numericToDecimal(row.PaidAmount),
		Status:      domain.ShareStatus(row.Status),
		CreatedAt:   row.CreatedAt.Time,
	}
}
