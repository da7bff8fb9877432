package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const claimIdempotencyKey = `-- name: ClaimIdempotencyKey :one
INSERT INTO idempotency_keys (key, response, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET response = EXCLUDED.response, expires_at = EXCLUDED.expires_at
WHERE idempotency_keys.expires_at <= $4
RETURNING key
`

type ClaimIdempotencyKeyParams struct {
	Key       string             `json:"key"`
	Response  []byte             `json:"response"`
	ExpiresAt pgtype.Timestamptz `json:"expires_at"`
	Now       pgtype.Timestamptz `json:"now"`
}

func (q *Queries) ClaimIdempotencyKey(ctx context.Context, arg ClaimIdempotencyKeyParams) (string, error) {
	row := q.db.QueryRow(ctx, claimIdempotencyKey,
		arg.Key,
		arg.Response,
		arg.ExpiresAt,
		arg.Now,
	)
	var key string
	err := row.Scan(&key)
	return key, err
}

const deleteIdempotencyKey = `-- name: DeleteIdempotencyKey :exec
DELETE FROM idempotency_keys WHERE key = $1
`

func (q *Queries) DeleteIdempotencyKey(ctx context.Context, key string) error {
	_, err := q.db.Exec(ctx, deleteIdempotencyKey, key)
	return err
}

const getIdempotencyResponse = `-- name: GetIdempotencyResponse :one
SELECT response FROM idempotency_keys WHERE key = $1 AND expires_at > $2
`

type GetIdempotencyResponseParams struct {
	Key string             `json:"key"`
	Now pgtype.Timestamptz `json:"now"`
}

func (q *Queries) GetIdempotencyResponse(ctx context.Context, arg GetIdempotencyResponseParams) ([]byte, error) {
	row := q.db.QueryRow(ctx, getIdempotencyResponse, arg.Key, arg.Now)
	var response []byte
	err := row.Scan(&response)
	return response, err
}

const updateIdempotencyResponse = `-- name: UpdateIdempotencyResponse :exec
INSERT INTO idempotency_keys (key, response, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET response = EXCLUDED.response, expires_at = EXCLUDED.expires_at
`

type UpdateIdempotencyResponseParams struct {
	Key       string             `json:"key"`
	Response  []byte             `json:"response"`
	ExpiresAt pgtype.Timestamptz `json:"expires_at"`
}

func (q *Queries) UpdateIdempotencyResponse(ctx context.Context, arg UpdateIdempotencyResponseParams) error {
	_, err := q.db.Exec(ctx, updateIdempotencyResponse, arg.Key, arg.Response, arg.ExpiresAt)
	return err
}

const deleteExpiredIdempotencyKeys = `-- name: DeleteExpiredIdempotencyKeys :exec
DELETE FROM idempotency_keys WHERE expires_at <= $1
`

func (q *Queries) DeleteExpiredIdempotencyKeys(ctx context.Context, now pgtype.Timestamptz) error {
	_, err := q.db.Exec(ctx, deleteExpiredIdempotencyKeys, now)
	return err
}
