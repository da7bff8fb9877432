package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
)

// SettlementUseCase applies payments between two users to outstanding shares.
type SettlementUseCase struct {
	txManager      TransactionManager
	shareRepo      ShareRepository
	settlementRepo SettlementRepository
	outboxRepo     OutboxRepository
	idGen          IDGenerator
	currency       string

	retrier Retrier
	locker  Locker
	cache   BalanceCache
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(
	txManager TransactionManager,
	shareRepo ShareRepository,
	settlementRepo SettlementRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	currency string,
	opts Options,
) *SettlementUseCase {
	if currency == "" {
		currency = DefaultCurrency
	}

	return &SettlementUseCase{
		txManager:      txManager,
		shareRepo:      shareRepo,
		settlementRepo: settlementRepo,
		outboxRepo:     outboxRepo,
		idGen:          idGen,
		currency:       strings.ToUpper(currency),
		retrier:        opts.retrier(),
		locker:         opts.locker(),
		cache:          opts.Cache,
		metrics:        opts.Metrics,
		logger:         opts.logger(),
	}
}

// SettleInput represents a payment from PayerID to CreditorID.
type SettleInput struct {
	PayerID    string
	CreditorID string
	Amount     decimal.Decimal
	Method     string
}

var settlementErrorLabels = map[error]string{
	domain.ErrInvalidAmount:        "invalid_amount",
	domain.ErrInvalidPaymentMethod: "invalid_method",
	domain.ErrSelfSettlement:       "self_settlement",
	domain.ErrInvalidParticipant:   "invalid_participant",
	domain.ErrOverpayment:          "overpayment",
	domain.ErrPersistence:          "persistence",
}

// SettleLockKey is the lock key serializing settlements of one payer to one creditor.
func SettleLockKey(payerID, creditorID string) string {
	return "settle:" + payerID + ":" + creditorID
}

// Settle pays down payer's shares on creditor's expenses, oldest first, and records
// a settlement for the full amount. A payment larger than the outstanding debt is
// rejected with domain.ErrOverpayment and nothing is written.
func (uc *SettlementUseCase) Settle(ctx context.Context, input SettleInput) (*domain.Settlement, error) {
	start := time.Now()

	settlement, alloc, err := uc.settle(ctx, input)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.SettlementErrors.WithLabelValues(metrics.ErrorType(err, settlementErrorLabels)).Inc()
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.SettlementsCompleted.Inc()
		uc.metrics.SettlementAmount.Observe(settlement.Amount.InexactFloat64())
		uc.metrics.SettlementDuration.Observe(time.Since(start).Seconds())
		for _, a := range alloc.Shares {
			if a.NewStatus == domain.ShareStatusSettled {
				uc.metrics.SharesSettled.Inc()
			}
		}
	}

	return settlement, nil
}

func (uc *SettlementUseCase) settle(ctx context.Context, input SettleInput) (*domain.Settlement, domain.Allocation, error) {
	// 0. Validate inputs before taking any lock
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, domain.Allocation{}, err
	}

	method, err := domain.ParsePaymentMethod(input.Method)
	if err != nil {
		return nil, domain.Allocation{}, err
	}

	settlement := &domain.Settlement{
		ID:              uc.idGen.Generate(),
		FromUserID:      input.PayerID,
		ToUserID:        input.CreditorID,
		Amount:          input.Amount,
		Currency:        uc.currency,
		Status:          domain.SettlementStatusCompleted,
		PaymentMethodID: method,
	}
	if err := settlement.Validate(); err != nil {
		return nil, domain.Allocation{}, err
	}

	// 1. Serialize per (payer, creditor), then run the transaction with retries
	var alloc domain.Allocation
	err = uc.locker.WithLock(ctx, SettleLockKey(input.PayerID, input.CreditorID), func(ctx context.Context) error {
		return uc.retrier.Retry(ctx, func() error {
			var applyErr error
			alloc, applyErr = uc.apply(ctx, settlement)
			return applyErr
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrOverpayment) {
			uc.logger.Info().
				Str("from_user_id", settlement.FromUserID).
				Str("to_user_id", settlement.ToUserID).
				Str("amount", settlement.Amount.String()).
				Msg("settlement rejected: overpayment")
			return nil, domain.Allocation{}, err
		}

		uc.logger.Error().Err(err).Str("settlement_id", settlement.ID).Msg("failed to record settlement")
		return nil, domain.Allocation{}, domain.NewPersistenceError("settle", err)
	}

	// 2. Drop cached balances of both parties
	uc.invalidate(ctx, settlement.FromUserID, settlement.ToUserID)

	uc.logger.Info().
		Str("settlement_id", settlement.ID).
		Str("from_user_id", settlement.FromUserID).
		Str("to_user_id", settlement.ToUserID).
		Str("amount", settlement.Amount.String()).
		Int("shares", len(alloc.Shares)).
		Msg("settlement recorded")

	return settlement, alloc, nil
}

func (uc *SettlementUseCase) apply(ctx context.Context, settlement *domain.Settlement) (domain.Allocation, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return domain.Allocation{}, err
	}
	defer tx.Rollback(txCtx)

	// Lock the payer's outstanding shares to this creditor in FIFO order
	shares, err := uc.shareRepo.ListOwedForUpdate(txCtx, tx, settlement.FromUserID, settlement.ToUserID)
	if err != nil {
		return domain.Allocation{}, err
	}

	outstanding := domain.Outstanding(shares)
	if outstanding.LessThan(settlement.Amount) {
		return domain.Allocation{}, fmt.Errorf("%w: %s outstanding to %s, got %s",
			domain.ErrOverpayment,
			outstanding.StringFixed(domain.AmountPlaces),
			settlement.ToUserID,
			settlement.Amount.StringFixed(domain.AmountPlaces),
		)
	}

	alloc := domain.AllocateFIFO(shares, settlement.Amount)

	for _, a := range alloc.Shares {
		if err := uc.shareRepo.UpdatePayment(txCtx, tx, a.ShareID, a.NewPaid, a.NewStatus); err != nil {
			return domain.Allocation{}, err
		}
	}

	settlement.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	if err := uc.settlementRepo.Create(txCtx, tx, settlement); err != nil {
		return domain.Allocation{}, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   settlement.ID,
		AggregateType: domain.AggregateTypeSettlement,
		EventType:     domain.EventTypeSettlementCompleted,
		Payload:       domain.PayloadMap(domain.NewSettlementCompletedEvent(settlement, alloc)),
		CreatedAt:     settlement.CreatedAt,
		Published:     false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return domain.Allocation{}, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return domain.Allocation{}, err
	}

	return alloc, nil
}

// ListSettlements returns settlements the user paid or received, newest first.
func (uc *SettlementUseCase) ListSettlements(ctx context.Context, userID string, limit, offset int) ([]*domain.Settlement, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)

	settlements, err := uc.settlementRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, domain.NewPersistenceError("list settlements", err)
	}

	return settlements, nil
}

func (uc *SettlementUseCase) invalidate(ctx context.Context, userIDs ...string) {
	if uc.cache == nil {
		return
	}

	if err := uc.cache.Invalidate(ctx, userIDs...); err != nil {
		uc.logger.Warn().Err(err).Strs("users", userIDs).Msg("failed to invalidate balance cache")
	}
}
