package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createExpense = `-- name: CreateExpense :exec
INSERT INTO expenses (id, group_id, created_by, total_amount, currency, note, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type CreateExpenseParams struct {
	ID          string             `json:"id"`
	GroupID     pgtype.Text        `json:"group_id"`
	CreatedBy   string             `json:"created_by"`
	TotalAmount pgtype.Numeric     `json:"total_amount"`
	Currency    string             `json:"currency"`
	Note        string             `json:"note"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) error {
	_, err := q.db.Exec(ctx, createExpense,
		arg.ID,
		arg.GroupID,
		arg.CreatedBy,
		arg.TotalAmount,
		arg.Currency,
		arg.Note,
		arg.CreatedAt,
	)
	return err
}

const getExpenseByID = `-- name: GetExpenseByID :one
SELECT id, group_id, created_by, total_amount, currency, note, created_at FROM expenses WHERE id = $1
`

func (q *Queries) GetExpenseByID(ctx context.Context, id string) (Expense, error) {
	row := q.db.QueryRow(ctx, getExpenseByID, id)
	var i Expense
	err := row.Scan(
		&i.ID,
		&i.GroupID,
		&i.CreatedBy,
		&i.TotalAmount,
		&i.Currency,
		&i.Note,
		&i.CreatedAt,
	)
	return i, err
}

const listExpensesByGroup = `-- name: ListExpensesByGroup :many
SELECT id, group_id, created_by, total_amount, currency, note, created_at FROM expenses
WHERE group_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`

type ListExpensesByGroupParams struct {
	GroupID pgtype.Text `json:"group_id"`
	Limit   int32       `json:"limit"`
	Offset  int32       `json:"offset"`
}

func (q *Queries) ListExpensesByGroup(ctx context.Context, arg ListExpensesByGroupParams) ([]Expense, error) {
	rows, err := q.db.Query(ctx, listExpensesByGroup, arg.GroupID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var i Expense
		if err := rows.Scan(
			&i.ID,
			&i.GroupID,
			&i.CreatedBy,
			&i.TotalAmount,
			&i.Currency,
			&i.Note,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listExpensesByParticipant = `-- name: ListExpensesByParticipant :many
SELECT e.id, e.group_id, e.created_by, e.total_amount, e.currency, e.note, e.created_at FROM expenses e
WHERE e.created_by = $1
   OR EXISTS (SELECT 1 FROM expense_shares s WHERE s.expense_id = e.id AND s.user_id = $1)
ORDER BY e.created_at DESC, e.id DESC
LIMIT $2
`

type ListExpensesByParticipantParams struct {
	UserID string `json:"user_id"`
	Limit  int32  `json:"limit"`
}

func (q *Queries) ListExpensesByParticipant(ctx context.Context, arg ListExpensesByParticipantParams) ([]Expense, error) {
	rows, err := q.db.Query(ctx, listExpensesByParticipant, arg.UserID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var i Expense
		if err := rows.Scan(
			&i.ID,
			&i.GroupID,
			&i.CreatedBy,
			&i.TotalAmount,
			&i.Currency,
			&i.Note,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
