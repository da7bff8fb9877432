package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// CreateExpenseRequest represents a request to record an expense paid by the caller.
type CreateExpenseRequest struct {
	GroupID        *string  `json:"group_id,omitempty"`
	Amount         string   `json:"amount"`
	Note           string   `json:"note"`
	ParticipantIDs []string `json:"participant_ids"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateExpenseRequest) ToUseCaseInput() (usecase.NewExpenseInput, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return usecase.NewExpenseInput{}, err
	}

	return usecase.NewExpenseInput{
		GroupID:        r.GroupID,
		Amount:         amount,
		Note:           r.Note,
		ParticipantIDs: r.ParticipantIDs,
	}, nil
}

// CreateSettlementRequest represents a payment from the caller to a creditor.
type CreateSettlementRequest struct {
	CreditorID string `json:"creditor_id"`
	Amount     string `json:"amount"`
	Method     string `json:"method"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateSettlementRequest) ToUseCaseInput() (usecase.PaymentInput, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return usecase.PaymentInput{}, err
	}

	return usecase.PaymentInput{
		CreditorID: r.CreditorID,
		Amount:     amount,
		Method:     r.Method,
	}, nil
}

// parseAmount reads a decimal string. Amounts are never accepted as JSON numbers.
func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", domain.ErrInvalidAmount)
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal", domain.ErrInvalidAmount, raw)
	}

	return amount, nil
}
