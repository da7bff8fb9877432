package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getUserNames = `-- name: GetUserNames :many
SELECT id, name FROM users WHERE id = ANY($1::text[])
`

type GetUserNamesRow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (q *Queries) GetUserNames(ctx context.Context, ids []string) ([]GetUserNamesRow, error) {
	rows, err := q.db.Query(ctx, getUserNames, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetUserNamesRow
	for rows.Next() {
		var i GetUserNamesRow
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertUser = `-- name: UpsertUser :exec
INSERT INTO users (id, name, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at
WHERE users.name <> EXCLUDED.name
`

type UpsertUserParams struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpsertUser(ctx context.Context, arg UpsertUserParams) error {
	_, err := q.db.Exec(ctx, upsertUser, arg.ID, arg.Name, arg.UpdatedAt)
	return err
}
