package sqlite

import (
	"context"
	"database/sql"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// SettlementRepository implements usecase.SettlementRepository.
type SettlementRepository struct {
	db *sql.DB
}

// NewSettlementRepository creates a new SettlementRepository.
func NewSettlementRepository(db *sql.DB) *SettlementRepository {
	return &SettlementRepository{db: db}
}

// Create inserts a settlement within a transaction.
func (r *SettlementRepository) Create(ctx context.Context, tx usecase.Transaction, s *domain.Settlement) error {
	stx, err := sqlTxFrom(tx)
	if err != nil {
		return err
	}

	_, err = stx.ExecContext(ctx,
		`INSERT INTO settlements (id, from_user_id, to_user_id, amount, currency, status, payment_method, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.FromUserID,
		s.ToUserID,
		toMinor(s.Amount),
		s.Currency,
		string(s.Status),
		string(s.PaymentMethodID),
		toMicros(s.CreatedAt),
	)
	return err
}

// ListByUser lists settlements the user paid or received, newest first.
func (r *SettlementRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Settlement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, from_user_id, to_user_id, amount, currency, status, payment_method, created_at
		 FROM settlements WHERE from_user_id = ?1 OR to_user_id = ?1
		 ORDER BY created_at DESC, id DESC LIMIT ?2 OFFSET ?3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settlements := make([]*domain.Settlement, 0)
	for rows.Next() {
		var (
			s              domain.Settlement
			amount         int64
			status, method string
			created        int64
		)
		if err := rows.Scan(&s.ID, &s.FromUserID, &s.ToUserID, &amount, &s.Currency, &status, &method, &created); err != nil {
			return nil, err
		}

		s.Amount = fromMinor(amount)
		s.Status = domain.SettlementStatus(status)
		s.PaymentMethodID = domain.PaymentMethod(method)
		s.CreatedAt = fromMicros(created)
		settlements = append(settlements, &s)
	}
	return settlements, rows.Err()
}
