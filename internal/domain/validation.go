package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidCurrency = errors.New("invalid currency code")
	ErrAmountTooLarge  = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall  = errors.New("amount below minimum allowed")
	ErrAmountPrecision = errors.New("amount has too many decimal places")
	ErrNoteTooLong     = errors.New("note is too long")
)

// Validation constants
const (
	MaxNoteLength      = 500
	MaxExpenseAmount   = "1000000000000" // 1 trillion
	MinExpenseAmount   = "0.01"
	DefaultPageSize    = 50
	MaxPageSize        = 1000
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateAmount validates an expense or settlement amount.
// Every failure matches ErrInvalidAmount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !amount.Equal(amount.Truncate(AmountPlaces)) {
		return fmt.Errorf("%w: %w: at most %d allowed", ErrInvalidAmount, ErrAmountPrecision, AmountPlaces)
	}

	minAmount, _ := decimal.NewFromString(MinExpenseAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: %w: minimum amount is %s", ErrInvalidAmount, ErrAmountTooSmall, MinExpenseAmount)
	}

	maxAmount, _ := decimal.NewFromString(MaxExpenseAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: %w: maximum amount is %s", ErrInvalidAmount, ErrAmountTooLarge, MaxExpenseAmount)
	}

	return nil
}

// ValidateNote validates the free-text expense note.
func ValidateNote(note string) error {
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrNoteTooLong, MaxNoteLength)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}

// ClampRecentLimit applies the activity feed bounds.
func ClampRecentLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}

	if limit > MaxRecentLimit {
		return MaxRecentLimit
	}

	return limit
}
