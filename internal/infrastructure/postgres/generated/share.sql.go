package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createShare = `-- name: CreateShare :exec
INSERT INTO expense_shares (id, expense_id, user_id, share_amount, paid_amount, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type CreateShareParams struct {
	ID          string             `json:"id"`
	ExpenseID   string             `json:"expense_id"`
	UserID      string             `json:"user_id"`
	ShareAmount pgtype.Numeric     `json:"share_amount"`
	PaidAmount  pgtype.Numeric     `json:"paid_amount"`
	Status      string             `json:"status"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateShare(ctx context.Context, arg CreateShareParams) error {
	_, err := q.db.Exec(ctx, createShare,
		arg.ID,
		arg.ExpenseID,
		arg.UserID,
		arg.ShareAmount,
		arg.PaidAmount,
		arg.Status,
		arg.CreatedAt,
	)
	return err
}

const listSharesByExpenseIDs = `-- name: ListSharesByExpenseIDs :many
SELECT id, expense_id, user_id, share_amount, paid_amount, status, created_at FROM expense_shares
WHERE expense_id = ANY($1::text[])
ORDER BY expense_id, id
`

func (q *Queries) ListSharesByExpenseIDs(ctx context.Context, expenseIds []string) ([]ExpenseShare, error) {
	rows, err := q.db.Query(ctx, listSharesByExpenseIDs, expenseIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseShare
	for rows.Next() {
		var i ExpenseShare
		if err := rows.Scan(
			&i.ID,
			&i.ExpenseID,
			&i.UserID,
			&i.ShareAmount,
			&i.PaidAmount,
			&i.Status,
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

const listOwedSharesForUpdate = `-- name: ListOwedSharesForUpdate :many
SELECT s.id, s.expense_id, s.user_id, s.share_amount, s.paid_amount, s.status, s.created_at, e.created_by AS creditor_id
FROM expense_shares s
JOIN expenses e ON e.id = s.expense_id
WHERE s.user_id = $1 AND e.created_by = $2 AND s.status = 'owed'
ORDER BY s.created_at, s.expense_id, s.id
FOR UPDATE OF s
`

type ListOwedSharesForUpdateParams struct {
	UserID    string `json:"user_id"`
	CreatedBy string `json:"created_by"`
}

type ListOwedSharesForUpdateRow struct {
	ID          string             `json:"id"`
	ExpenseID   string             `json:"expense_id"`
	UserID      string             `json:"user_id"`
	ShareAmount pgtype.Numeric     `json:"share_amount"`
	PaidAmount  pgtype.Numeric     `json:"paid_amount"`
	Status      string             `json:"status"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	CreditorID  string             `json:"creditor_id"`
}

func (q *Queries) ListOwedSharesForUpdate(ctx context.Context, arg ListOwedSharesForUpdateParams) ([]ListOwedSharesForUpdateRow, error) {
	rows, err := q.db.Query(ctx, listOwedSharesForUpdate, arg.UserID, arg.CreatedBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListOwedSharesForUpdateRow
	for rows.Next() {
		var i ListOwedSharesForUpdateRow
		if err := rows.Scan(
			&i.ID,
			&i.ExpenseID,
			&i.UserID,
			&i.ShareAmount,
			&i.PaidAmount,
			&i.Status,
			&i.CreatedAt,
			&i.CreditorID,
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

const updateSharePayment = `-- name: UpdateSharePayment :execrows
UPDATE expense_shares SET paid_amount = $2, status = $3 WHERE id = $1
`

type UpdateSharePaymentParams struct {
	ID         string         `json:"id"`
	PaidAmount pgtype.Numeric `json:"paid_amount"`
	Status     string         `json:"status"`
}

func (q *Queries) UpdateSharePayment(ctx context.Context, arg UpdateSharePaymentParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateSharePayment, arg.ID, arg.PaidAmount, arg.Status)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listOutstandingSharesForUser = `-- name: ListOutstandingSharesForUser :many
SELECT s.id, s.expense_id, s.user_id, s.share_amount, s.paid_amount, s.status, s.created_at, e.created_by AS creditor_id
FROM expense_shares s
JOIN expenses e ON e.id = s.expense_id
WHERE s.status = 'owed' AND (s.user_id = $1 OR e.created_by = $1)
ORDER BY s.created_at, s.expense_id, s.id
`

type ListOutstandingSharesForUserRow struct {
	ID          string             `json:"id"`
	ExpenseID   string             `json:"expense_id"`
	UserID      string             `json:"user_id"`
	ShareAmount pgtype.Numeric     `json:"share_amount"`
	PaidAmount  pgtype.Numeric     `json:"paid_amount"`
	Status      string             `json:"status"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	CreditorID  string             `json:"creditor_id"`
}

func (q *Queries) ListOutstandingSharesForUser(ctx context.Context, userID string) ([]ListOutstandingSharesForUserRow, error) {
	rows, err := q.db.Query(ctx, listOutstandingSharesForUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListOutstandingSharesForUserRow
	for rows.Next() {
		var i ListOutstandingSharesForUserRow
		if err := rows.Scan(
			&i.ID,
			&i.ExpenseID,
			&i.UserID,
			&i.ShareAmount,
			&i.PaidAmount,
			&i.Status,
			&i.CreatedAt,
			&i.CreditorID,
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
