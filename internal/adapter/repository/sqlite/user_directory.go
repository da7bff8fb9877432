package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iho/splitledger/internal/domain"
)

// UserDirectory resolves display names from the users table.
type UserDirectory struct {
	db *sql.DB
}

// NewUserDirectory creates a new UserDirectory.
func NewUserDirectory(db *sql.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

// GetDisplayNames returns the known names among ids.
func (d *UserDirectory) GetDisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := d.db.QueryContext(ctx, `SELECT id, name FROM users WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

// Register records the user's display name.
func (d *UserDirectory) Register(ctx context.Context, user *domain.User) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO users (id, name, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at
		 WHERE users.name <> excluded.name`,
		user.ID, user.Name, toMicros(time.Now()),
	)
	return err
}
