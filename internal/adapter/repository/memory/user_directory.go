package memory

import (
	"context"

	"github.com/iho/splitledger/internal/domain"
)

// UserDirectory implements usecase.UserDirectory over names registered with PutUser.
type UserDirectory struct {
	store *Store
}

// NewUserDirectory creates a new UserDirectory.
func NewUserDirectory(store *Store) *UserDirectory {
	return &UserDirectory{store: store}
}

// GetDisplayNames returns the known names among ids.
func (d *UserDirectory) GetDisplayNames(_ context.Context, ids []string) (map[string]string, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if name, ok := d.store.users[id]; ok {
			names[id] = name
		}
	}
	return names, nil
}

// Register records the user's display name.
func (d *UserDirectory) Register(_ context.Context, user *domain.User) error {
	d.store.PutUser(user.ID, user.Name)
	return nil
}
