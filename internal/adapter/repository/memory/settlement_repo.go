package memory

import (
	"context"
	"sort"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// SettlementRepository implements usecase.SettlementRepository.
type SettlementRepository struct {
	store *Store
}

// NewSettlementRepository creates a new SettlementRepository.
func NewSettlementRepository(store *Store) *SettlementRepository {
	return &SettlementRepository{store: store}
}

// Create stages a settlement row.
func (r *SettlementRepository) Create(_ context.Context, tx usecase.Transaction, settlement *domain.Settlement) error {
	mtx, err := r.store.txFrom(tx)
	if err != nil {
		return err
	}

	row := *settlement
	mtx.stage(func() {
		r.store.settlements = append(r.store.settlements, &row)
	})
	return nil
}

// ListByUser returns settlements paid or received by userID, newest first.
func (r *SettlementRepository) ListByUser(_ context.Context, userID string, limit, offset int) ([]*domain.Settlement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*domain.Settlement
	for _, s := range r.store.settlements {
		if s.FromUserID == userID || s.ToUserID == userID {
			c := *s
			matched = append(matched, &c)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if offset >= len(matched) {
		return []*domain.Settlement{}, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}
