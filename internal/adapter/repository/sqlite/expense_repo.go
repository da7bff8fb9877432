package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

const expenseColumns = `id, group_id, created_by, total_amount, currency, note, created_at`

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	db *sql.DB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create inserts the expense row.
func (r *ExpenseRepository) Create(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	stx, err := sqlTxFrom(tx)
	if err != nil {
		return err
	}

	_, err = stx.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID,
		nullString(expense.GroupID),
		expense.CreatedBy,
		toMinor(expense.TotalAmount),
		expense.Currency,
		expense.Note,
		toMicros(expense.CreatedAt),
	)
	return err
}

// GetByID retrieves an expense with its shares.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)

	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, err
	}

	if err := r.attachShares(ctx, []*domain.Expense{e}); err != nil {
		return nil, err
	}
	return e, nil
}

// ListByGroup lists a group's expenses, newest first.
func (r *ExpenseRepository) ListByGroup(ctx context.Context, groupID string, limit, offset int) ([]*domain.Expense, error) {
	return r.list(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE group_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		groupID, limit, offset,
	)
}

// ListByParticipant lists expenses the user created or holds a share in, newest first.
func (r *ExpenseRepository) ListByParticipant(ctx context.Context, userID string, limit int) ([]*domain.Expense, error) {
	return r.list(ctx,
		`SELECT `+expenseColumns+` FROM expenses e
		 WHERE e.created_by = ?1
		    OR EXISTS (SELECT 1 FROM expense_shares s WHERE s.expense_id = e.id AND s.user_id = ?1)
		 ORDER BY e.created_at DESC, e.id DESC LIMIT ?2`,
		userID, limit,
	)
}

func (r *ExpenseRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]*domain.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachShares(ctx, expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *ExpenseRepository) attachShares(ctx context.Context, expenses []*domain.Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Expense, len(expenses))
	args := make([]any, 0, len(expenses))
	for _, e := range expenses {
		byID[e.ID] = e
		args = append(args, e.ID)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(args)), ",")
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+shareColumns+` FROM expense_shares WHERE expense_id IN (`+placeholders+`) ORDER BY expense_id, id`,
		args...,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanShare(rows)
		if err != nil {
			return err
		}
		if e, ok := byID[s.ExpenseID]; ok {
			s.CreditorID = e.CreatedBy
			e.Shares = append(e.Shares, s)
		}
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (*domain.Expense, error) {
	var (
		e       domain.Expense
		groupID sql.NullString
		total   int64
		created int64
	)
	if err := row.Scan(&e.ID, &groupID, &e.CreatedBy, &total, &e.Currency, &e.Note, &created); err != nil {
		return nil, err
	}

	if groupID.Valid {
		g := groupID.String
		e.GroupID = &g
	}
	e.TotalAmount = fromMinor(total)
	e.CreatedAt = fromMicros(created)
	return &e, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
