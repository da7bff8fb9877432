package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod labels how money moved between two users.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodUPI  PaymentMethod = "upi"
	PaymentMethodBank PaymentMethod = "bank"
	PaymentMethodCard PaymentMethod = "card"
)

var validPaymentMethods = map[PaymentMethod]bool{
	PaymentMethodCash: true,
	PaymentMethodUPI:  true,
	PaymentMethodBank: true,
	PaymentMethodCard: true,
}

// ParsePaymentMethod normalizes a method label, matching case-insensitively.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(raw)))
	if !validPaymentMethods[m] {
		return "", fmt.Errorf("%w: %q, must be one of cash, upi, bank, card", ErrInvalidPaymentMethod, raw)
	}

	return m, nil
}

// SettlementStatus is the lifecycle state of a settlement. Only completed exists.
type SettlementStatus string

const SettlementStatusCompleted SettlementStatus = "completed"

// Settlement is the receipt for money paid from one user to another.
// It does not reference the shares it paid down; those are derived from share state.
type Settlement struct {
	ID              string
	FromUserID      string
	ToUserID        string
	Amount          decimal.Decimal
	Currency        string
	Status          SettlementStatus
	PaymentMethodID PaymentMethod
	CreatedAt       time.Time
}

// Validate checks the settlement before it is written.
func (s *Settlement) Validate() error {
	if strings.TrimSpace(s.FromUserID) == "" || strings.TrimSpace(s.ToUserID) == "" {
		return ErrInvalidParticipant
	}

	if s.FromUserID == s.ToUserID {
		return ErrSelfSettlement
	}

	if err := ValidateAmount(s.Amount); err != nil {
		return err
	}

	if !validPaymentMethods[s.PaymentMethodID] {
		return ErrInvalidPaymentMethod
	}

	return nil
}
