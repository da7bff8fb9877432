package postgres

import (
	"context"
	"time"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/postgres/generated"
)

// UserDirectory resolves display names from the users table.
type UserDirectory struct {
	queries *generated.Queries
}

// NewUserDirectory creates a new UserDirectory.
func NewUserDirectory(db generated.DBTX) *UserDirectory {
	return &UserDirectory{queries: generated.New(db)}
}

// GetDisplayNames returns the known names among ids.
func (d *UserDirectory) GetDisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	rows, err := d.queries.GetUserNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(rows))
	for _, row := range rows {
		names[row.ID] = row.Name
	}

	return names, nil
}

// Register records the caller's display name.
func (d *UserDirectory) Register(ctx context.Context, user *domain.User) error {
	return d.queries.UpsertUser(ctx, generated.UpsertUserParams{
		ID:        user.ID,
		Name:      user.Name,
		UpdatedAt: timeToPgTimestamptz(time.Now().UTC()),
	})
}
