package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShareStatus represents whether a share still carries outstanding debt.
type ShareStatus string

const (
	ShareStatusOwed    ShareStatus = "owed"
	ShareStatusSettled ShareStatus = "settled"
)

// IsValid checks if the status is known.
func (s ShareStatus) IsValid() bool {
	return s == ShareStatusOwed || s == ShareStatusSettled
}

// Expense is an immutable record of a single spend event.
// CreatedBy is the payer of record and the creditor of every other share.
type Expense struct {
	ID          string
	GroupID     *string
	CreatedBy   string
	TotalAmount decimal.Decimal
	Currency    string
	Note        string
	CreatedAt   time.Time
	Shares      []*ExpenseShare
}

// ParticipantIDs returns the frozen participant snapshot in share order.
func (e *Expense) ParticipantIDs() []string {
	ids := make([]string, 0, len(e.Shares))
	for _, s := range e.Shares {
		ids = append(ids, s.UserID)
	}
	return ids
}

// Validate checks that the shares conserve the total and satisfy the share invariants.
func (e *Expense) Validate() error {
	if e.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if len(e.Shares) == 0 {
		return ErrEmptyParticipants
	}

	sum := decimal.Zero
	payerFound := false
	for _, s := range e.Shares {
		if err := s.Validate(); err != nil {
			return err
		}
		if s.UserID == e.CreatedBy {
			payerFound = true
		}
		sum = sum.Add(s.ShareAmount)
	}

	if !payerFound {
		return ErrPayerNotParticipant
	}

	if !sum.Equal(e.TotalAmount) {
		return ErrInconsistentShares
	}

	return nil
}

// ExpenseShare is one participant's obligation within an expense.
// CreditorID is not stored on the share; it is the owning expense's CreatedBy and is
// filled in by repositories that join against expenses.
type ExpenseShare struct {
	ID          string
	ExpenseID   string
	UserID      string
	CreditorID  string
	ShareAmount decimal.Decimal
	PaidAmount  decimal.Decimal
	Status      ShareStatus
	CreatedAt   time.Time
}

// Due returns the outstanding part of the share.
func (s *ExpenseShare) Due() decimal.Decimal {
	return s.ShareAmount.Sub(s.PaidAmount)
}

// Validate enforces 0 <= paid <= share and settled iff paid == share.
func (s *ExpenseShare) Validate() error {
	if s.ShareAmount.IsNegative() || s.PaidAmount.IsNegative() {
		return ErrInconsistentShares
	}

	if s.PaidAmount.GreaterThan(s.ShareAmount) {
		return ErrInconsistentShares
	}

	settled := s.PaidAmount.Equal(s.ShareAmount)
	if settled != (s.Status == ShareStatusSettled) {
		return ErrInconsistentShares
	}

	return nil
}

// ConservationViolation describes an expense whose shares break the share invariants.
type ConservationViolation struct {
	ExpenseID   string
	TotalAmount decimal.Decimal
	ShareSum    decimal.Decimal
	Reason      string
}
