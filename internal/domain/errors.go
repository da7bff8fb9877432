package domain

import (
	"errors"
	"fmt"
)

var (
	// Expense errors
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrEmptyParticipants   = errors.New("expense must have at least one participant")
	ErrPayerNotParticipant = errors.New("payer must be one of the participants")
	ErrInvalidParticipant  = errors.New("participant id cannot be empty")
	ErrExpenseNotFound     = errors.New("expense not found")
	ErrInconsistentShares  = errors.New("expense shares are inconsistent")

	// Settlement errors
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrSelfSettlement       = errors.New("cannot settle with yourself")
	ErrOverpayment          = errors.New("amount exceeds outstanding debt")

	// Storage errors
	ErrPersistence = errors.New("persistence failure")
)

// PersistenceError wraps a storage failure that happened after validation passed.
// Nothing written in the failed unit of work is visible to other readers.
type PersistenceError struct {
	Op  string
	Err error
}

// NewPersistenceError wraps err unless it is nil or already a PersistenceError.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}

	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}

	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence.Error(), e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is reports ErrPersistence as a match so callers can check the category.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
