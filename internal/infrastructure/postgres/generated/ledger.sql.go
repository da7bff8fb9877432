package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const findConservationViolations = `-- name: FindConservationViolations :many
SELECT e.id, e.total_amount, COALESCE(SUM(s.share_amount), 0)::NUMERIC AS share_sum,
       COUNT(s.id) FILTER (
           WHERE s.paid_amount < 0 OR s.paid_amount > s.share_amount
              OR (s.status = 'settled') <> (s.paid_amount = s.share_amount)
       ) AS bad_shares
FROM expenses e
LEFT JOIN expense_shares s ON s.expense_id = e.id
GROUP BY e.id, e.total_amount
HAVING COALESCE(SUM(s.share_amount), 0) <> e.total_amount
    OR COUNT(s.id) FILTER (
           WHERE s.paid_amount < 0 OR s.paid_amount > s.share_amount
              OR (s.status = 'settled') <> (s.paid_amount = s.share_amount)
       ) > 0
ORDER BY e.id
`

type FindConservationViolationsRow struct {
	ID          string         `json:"id"`
	TotalAmount pgtype.Numeric `json:"total_amount"`
	ShareSum    pgtype.Numeric `json:"share_sum"`
	BadShares   int64          `json:"bad_shares"`
}

func (q *Queries) FindConservationViolations(ctx context.Context) ([]FindConservationViolationsRow, error) {
	rows, err := q.db.Query(ctx, findConservationViolations)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []FindConservationViolationsRow
	for rows.Next() {
		var i FindConservationViolationsRow
		if err := rows.Scan(
			&i.ID,
			&i.TotalAmount,
			&i.ShareSum,
			&i.BadShares,
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

const getPairTotals = `-- name: GetPairTotals :one
SELECT
    (SELECT COALESCE(SUM(amount), 0) FROM settlements
     WHERE from_user_id = $1 AND to_user_id = $2)::NUMERIC AS settled,
    (SELECT COALESCE(SUM(s.paid_amount), 0) FROM expense_shares s
     JOIN expenses e ON e.id = s.expense_id
     WHERE s.user_id = $1 AND e.created_by = $2)::NUMERIC AS applied
`

type GetPairTotalsParams struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
}

type GetPairTotalsRow struct {
	Settled pgtype.Numeric `json:"settled"`
	Applied pgtype.Numeric `json:"applied"`
}

func (q *Queries) GetPairTotals(ctx context.Context, arg GetPairTotalsParams) (GetPairTotalsRow, error) {
	row := q.db.QueryRow(ctx, getPairTotals, arg.FromUserID, arg.ToUserID)
	var i GetPairTotalsRow
	err := row.Scan(&i.Settled, &i.Applied)
	return i, err
}
