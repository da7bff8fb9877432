package usecase

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
)

// LedgerUseCase is the entry point for callers. Every operation is bound to the
// authenticated caller carried by the context and fails with domain.ErrUnauthorized
// before any other check when there is none.
type LedgerUseCase struct {
	expenses    *ExpenseUseCase
	settlements *SettlementUseCase
	balances    *BalanceUseCase
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(expenses *ExpenseUseCase, settlements *SettlementUseCase, balances *BalanceUseCase) *LedgerUseCase {
	return &LedgerUseCase{
		expenses:    expenses,
		settlements: settlements,
		balances:    balances,
	}
}

// NewExpenseInput is a caller-paid expense.
type NewExpenseInput struct {
	GroupID        *string
	Amount         decimal.Decimal
	Note           string
	ParticipantIDs []string
}

// PaymentInput is a caller-made payment to a creditor.
type PaymentInput struct {
	CreditorID string
	Amount     decimal.Decimal
	Method     string
}

// CreateExpense records an expense paid by the caller.
func (uc *LedgerUseCase) CreateExpense(ctx context.Context, input NewExpenseInput) (*domain.Expense, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	return uc.expenses.CreateExpense(ctx, CreateExpenseInput{
		GroupID:        input.GroupID,
		PayerID:        caller.ID,
		Amount:         input.Amount,
		Note:           input.Note,
		ParticipantIDs: input.ParticipantIDs,
	})
}

// Settle records a payment from the caller to a creditor.
func (uc *LedgerUseCase) Settle(ctx context.Context, input PaymentInput) (*domain.Settlement, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	return uc.settlements.Settle(ctx, SettleInput{
		PayerID:    caller.ID,
		CreditorID: input.CreditorID,
		Amount:     input.Amount,
		Method:     input.Method,
	})
}

// GetExpense returns an expense the caller participates in. Expenses the caller is
// not part of are reported as not found.
func (uc *LedgerUseCase) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	expense, err := uc.expenses.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(expense.ParticipantIDs(), caller.ID) {
		return nil, domain.ErrExpenseNotFound
	}

	return expense, nil
}

// GetBalances returns the caller's balance summary.
func (uc *LedgerUseCase) GetBalances(ctx context.Context) (*domain.BalanceSummary, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	return uc.balances.GetBalances(ctx, caller.ID)
}

// GetGroupExpenses returns a group's expenses, newest first.
func (uc *LedgerUseCase) GetGroupExpenses(ctx context.Context, groupID string, limit, offset int) ([]*domain.Expense, error) {
	if _, err := callerFrom(ctx); err != nil {
		return nil, err
	}

	return uc.expenses.ListExpensesForGroup(ctx, groupID, limit, offset)
}

// GetRecentActivity returns the caller's most recent expenses.
func (uc *LedgerUseCase) GetRecentActivity(ctx context.Context, limit int) ([]*domain.Expense, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	return uc.expenses.ListRecentActivity(ctx, caller.ID, limit)
}

// GetSettlements returns settlements the caller paid or received.
func (uc *LedgerUseCase) GetSettlements(ctx context.Context, limit, offset int) ([]*domain.Settlement, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	return uc.settlements.ListSettlements(ctx, caller.ID, limit, offset)
}

func callerFrom(ctx context.Context) (*domain.User, error) {
	user, ok := domain.UserFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}
