package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
)

// ExpenseUseCase splits and stores expenses and serves expense reads.
type ExpenseUseCase struct {
	txManager   TransactionManager
	expenseRepo ExpenseRepository
	shareRepo   ShareRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	currency    string

	retrier Retrier
	cache   BalanceCache
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewExpenseUseCase creates a new ExpenseUseCase.
func NewExpenseUseCase(
	txManager TransactionManager,
	expenseRepo ExpenseRepository,
	shareRepo ShareRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	currency string,
	opts Options,
) *ExpenseUseCase {
	if currency == "" {
		currency = DefaultCurrency
	}

	return &ExpenseUseCase{
		txManager:   txManager,
		expenseRepo: expenseRepo,
		shareRepo:   shareRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		currency:    strings.ToUpper(currency),
		retrier:     opts.retrier(),
		cache:       opts.Cache,
		metrics:     opts.Metrics,
		logger:      opts.logger(),
	}
}

// CreateExpenseInput represents input for creating an expense.
type CreateExpenseInput struct {
	GroupID        *string
	PayerID        string
	Amount         decimal.Decimal
	Note           string
	ParticipantIDs []string
}

var expenseErrorLabels = map[error]string{
	domain.ErrInvalidAmount:       "invalid_amount",
	domain.ErrEmptyParticipants:   "empty_participants",
	domain.ErrPayerNotParticipant: "payer_not_participant",
	domain.ErrInvalidParticipant:  "invalid_participant",
	domain.ErrNoteTooLong:         "note_too_long",
	domain.ErrPersistence:         "persistence",
}

// CreateExpense splits the amount across the participants and stores the expense
// with every share in one transaction.
func (uc *ExpenseUseCase) CreateExpense(ctx context.Context, input CreateExpenseInput) (*domain.Expense, error) {
	start := time.Now()

	expense, err := uc.createExpense(ctx, input)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.ExpenseErrors.WithLabelValues(metrics.ErrorType(err, expenseErrorLabels)).Inc()
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ExpensesCreated.Inc()
		uc.metrics.ExpenseAmount.Observe(expense.TotalAmount.InexactFloat64())
		uc.metrics.ExpenseShares.Observe(float64(len(expense.Shares)))
		uc.metrics.ExpenseDuration.Observe(time.Since(start).Seconds())
	}

	return expense, nil
}

func (uc *ExpenseUseCase) createExpense(ctx context.Context, input CreateExpenseInput) (*domain.Expense, error) {
	// 0. Validate inputs before starting transaction
	if err := domain.ValidateNote(input.Note); err != nil {
		return nil, err
	}

	splits, err := domain.SplitEvenly(input.Amount, input.ParticipantIDs, input.PayerID)
	if err != nil {
		return nil, err
	}

	// 1. Build the expense and its frozen participant snapshot
	now := time.Now().UTC().Truncate(time.Microsecond)
	expense := &domain.Expense{
		ID:          uc.idGen.Generate(),
		GroupID:     normalizeGroupID(input.GroupID),
		CreatedBy:   input.PayerID,
		TotalAmount: input.Amount,
		Currency:    uc.currency,
		Note:        input.Note,
		CreatedAt:   now,
		Shares:      make([]*domain.ExpenseShare, 0, len(splits)),
	}

	for _, s := range splits {
		expense.Shares = append(expense.Shares, &domain.ExpenseShare{
			ID:          uc.idGen.Generate(),
			ExpenseID:   expense.ID,
			UserID:      s.UserID,
			CreditorID:  expense.CreatedBy,
			ShareAmount: s.ShareAmount,
			PaidAmount:  s.PaidAmount,
			Status:      s.Status,
			CreatedAt:   now,
		})
	}

	if err := expense.Validate(); err != nil {
		return nil, err
	}

	// 2. Persist atomically, retrying transient conflicts
	err = uc.retrier.Retry(ctx, func() error {
		return uc.persist(ctx, expense)
	})
	if err != nil {
		uc.logger.Error().Err(err).Str("expense_id", expense.ID).Msg("failed to store expense")
		return nil, domain.NewPersistenceError("create expense", err)
	}

	// 3. Drop cached balances of everyone the expense touches
	uc.invalidate(ctx, expense.ParticipantIDs()...)

	uc.logger.Info().
		Str("expense_id", expense.ID).
		Str("created_by", expense.CreatedBy).
		Str("amount", expense.TotalAmount.String()).
		Int("participants", len(expense.Shares)).
		Msg("expense created")

	return expense, nil
}

func (uc *ExpenseUseCase) persist(ctx context.Context, expense *domain.Expense) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(txCtx)

	if err := uc.expenseRepo.Create(txCtx, tx, expense); err != nil {
		return err
	}

	if err := uc.shareRepo.CreateBatch(txCtx, tx, expense.Shares); err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   expense.ID,
		AggregateType: domain.AggregateTypeExpense,
		EventType:     domain.EventTypeExpenseCreated,
		Payload:       domain.PayloadMap(domain.NewExpenseCreatedEvent(expense)),
		CreatedAt:     expense.CreatedAt,
		Published:     false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

// ListExpensesForGroup returns a group's expenses with shares, newest first.
func (uc *ExpenseUseCase) ListExpensesForGroup(ctx context.Context, groupID string, limit, offset int) ([]*domain.Expense, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)

	expenses, err := uc.expenseRepo.ListByGroup(ctx, groupID, limit, offset)
	if err != nil {
		return nil, domain.NewPersistenceError("list group expenses", err)
	}

	return expenses, nil
}

// ListRecentActivity returns expenses the user created or shares in, newest first.
func (uc *ExpenseUseCase) ListRecentActivity(ctx context.Context, userID string, limit int) ([]*domain.Expense, error) {
	expenses, err := uc.expenseRepo.ListByParticipant(ctx, userID, domain.ClampRecentLimit(limit))
	if err != nil {
		return nil, domain.NewPersistenceError("list recent activity", err)
	}

	return expenses, nil
}

// GetExpense returns one expense with its shares.
func (uc *ExpenseUseCase) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	expense, err := uc.expenseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return nil, err
		}
		return nil, domain.NewPersistenceError("get expense", err)
	}

	return expense, nil
}

func (uc *ExpenseUseCase) invalidate(ctx context.Context, userIDs ...string) {
	if uc.cache == nil {
		return
	}

	if err := uc.cache.Invalidate(ctx, userIDs...); err != nil {
		uc.logger.Warn().Err(err).Strs("users", userIDs).Msg("failed to invalidate balance cache")
	}
}

func normalizeGroupID(groupID *string) *string {
	if groupID == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*groupID)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}
