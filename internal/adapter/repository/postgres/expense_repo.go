package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/postgres/generated"
	"github.com/iho/splitledger/internal/usecase"
)

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	queries *generated.Queries
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db generated.DBTX) *ExpenseRepository {
	return &ExpenseRepository{queries: generated.New(db)}
}

// Create inserts the expense row. Shares are written by ShareRepository.CreateBatch.
func (r *ExpenseRepository) Create(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	return generated.New(pgxTx).CreateExpense(ctx, generated.CreateExpenseParams{
		ID:          expense.ID,
		GroupID:     textFromPtr(expense.GroupID),
		CreatedBy:   expense.CreatedBy,
		TotalAmount: decimalToNumeric(expense.TotalAmount),
		Currency:    expense.Currency,
		Note:        expense.Note,
		CreatedAt:   timeToPgTimestamptz(expense.CreatedAt),
	})
}

// GetByID retrieves an expense with its shares.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	row, err := r.queries.GetExpenseByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}

		return nil, err
	}

	expenses, err := r.withShares(ctx, []generated.Expense{row})
	if err != nil {
		return nil, err
	}

	return expenses[0], nil
}

// ListByGroup lists a group's expenses, newest first.
func (r *ExpenseRepository) ListByGroup(ctx context.Context, groupID string, limit, offset int) ([]*domain.Expense, error) {
	rows, err := r.queries.ListExpensesByGroup(ctx, generated.ListExpensesByGroupParams{
		GroupID: pgtype.Text{String: groupID, Valid: true},
		Limit:   int32(limit),
		Offset:  int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return r.withShares(ctx, rows)
}

// ListByParticipant lists expenses the user created or holds a share in, newest first.
func (r *ExpenseRepository) ListByParticipant(ctx context.Context, userID string, limit int) ([]*domain.Expense, error) {
	rows, err := r.queries.ListExpensesByParticipant(ctx, generated.ListExpensesByParticipantParams{
		UserID: userID,
		Limit:  int32(limit),
	})
	if err != nil {
		return nil, err
	}

	return r.withShares(ctx, rows)
}

func (r *ExpenseRepository) withShares(ctx context.Context, rows []generated.Expense) ([]*domain.Expense, error) {
	expenses := make([]*domain.Expense, 0, len(rows))
	if len(rows) == 0 {
		return expenses, nil
	}

	byID := make(map[string]*domain.Expense, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		e := rowToExpense(row)
		expenses = append(expenses, e)
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}

	shareRows, err := r.queries.ListSharesByExpenseIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, sr := range shareRows {
		e, ok := byID[sr.ExpenseID]
		if !ok {
			continue
		}
		share := rowToShare(sr)
		share.CreditorID = e.CreatedBy
		e.Shares = append(e.Shares, share)
	}

	return expenses, nil
}

func rowToExpense(row generated.Expense) *domain.Expense {
	return &domain.Expense{
		ID:          row.ID,
		GroupID:     ptrFromText(row.GroupID),
		CreatedBy:   row.CreatedBy,
		TotalAmount: numericToDecimal(row.TotalAmount),
		Currency:    row.Currency,
		Note:        row.Note,
		CreatedAt:   row.CreatedAt.Time,
	}
}
