package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createSettlement = `-- name: CreateSettlement :exec
INSERT INTO settlements (id, from_user_id, to_user_id, amount, currency, status, payment_method, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

type CreateSettlementParams struct {
	ID            string             `json:"id"`
	FromUserID    string             `json:"from_user_id"`
	ToUserID      string             `json:"to_user_id"`
	Amount        pgtype.Numeric     `json:"amount"`
	Currency      string             `json:"currency"`
	Status        string             `json:"status"`
	PaymentMethod string             `json:"payment_method"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateSettlement(ctx context.Context, arg CreateSettlementParams) error {
	_, err := q.db.Exec(ctx, createSettlement,
		arg.ID,
		arg.FromUserID,
		arg.ToUserID,
		arg.Amount,
		arg.Currency,
		arg.Status,
		arg.PaymentMethod,
		arg.CreatedAt,
	)
	return err
}

const listSettlementsByUser = `-- name: ListSettlementsByUser :many
SELECT id, from_user_id, to_user_id, amount, currency, status, payment_method, created_at FROM settlements
WHERE from_user_id = $1 OR to_user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`

type ListSettlementsByUserParams struct {
	UserID string `json:"user_id"`
	Limit  int32  `json:"limit"`
	Offset int32  `json:"offset"`
}

func (q *Queries) ListSettlementsByUser(ctx context.Context, arg ListSettlementsByUserParams) ([]Settlement, error) {
	rows, err := q.db.Query(ctx, listSettlementsByUser, arg.UserID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Settlement
	for rows.Next() {
		var i Settlement
		if err := rows.Scan(
			&i.ID,
			&i.FromUserID,
			&i.ToUserID,
			&i.Amount,
			&i.Currency,
			&i.Status,
			&i.PaymentMethod,
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
