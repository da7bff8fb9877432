package postgres

import (
	"context"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/postgres/generated"
	"github.com/iho/splitledger/internal/usecase"
)

// SettlementRepository implements usecase.SettlementRepository.
type SettlementRepository struct {
	queries *generated.Queries
}

// NewSettlementRepository creates a new SettlementRepository.
func NewSettlementRepository(db generated.DBTX) *SettlementRepository {
	return &SettlementRepository{queries: generated.New(db)}
}

// Create inserts a settlement within a transaction.
func (r *SettlementRepository) Create(ctx context.Context, tx usecase.Transaction, settlement *domain.Settlement) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	return generated.New(pgxTx).CreateSettlement(ctx, generated.CreateSettlementParams{
		ID:            settlement.ID,
		FromUserID:    settlement.FromUserID,
		ToUserID:      settlement.ToUserID,
		Amount:        decimalToNumeric(settlement.Amount),
		Currency:      settlement.Currency,
		Status:        string(settlement.Status),
		PaymentMethod: string(settlement.PaymentMethodID),
		CreatedAt:     timeToPgTimestamptz(settlement.CreatedAt),
	})
}

// ListByUser lists settlements the user paid or received, newest first.
func (r *SettlementRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Settlement, error) {
	rows, err := r.queries.ListSettlementsByUser(ctx, generated.ListSettlementsByUserParams{
		UserID: userID,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	settlements := make([]*domain.Settlement, 0, len(rows))
	for _, row := range rows {
		settlements = append(settlements, &domain.Settlement{
			ID:              row.ID,
			FromUserID:      row.FromUserID,
			ToUserID:        row.ToUserID,
			Amount:          numericToDecimal(row.Amount),
			Currency:        row.Currency,
			Status:          domain.SettlementStatus(row.Status),
			PaymentMethodID: domain.PaymentMethod(row.PaymentMethod),
			CreatedAt:       row.CreatedAt.Time,
		})
	}

	return settlements, nil
}
