package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateCurrency(t *testing.T) {
	t.Parallel()

	if err := ValidateCurrency("inr"); err != nil {
		t.Fatalf("expected uppercase conversion to succeed, got %v", err)
	}

	if err := ValidateCurrency("XYZ"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		amount  string
		wantErr error
	}{
		{"valid", "100.25", nil},
		{"minimum", "0.01", nil},
		{"zero", "0", ErrInvalidAmount},
		{"negative", "-5", ErrInvalidAmount},
		{"sub cent", "0.001", ErrAmountPrecision},
		{"too large", "1000000000000.01", ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.amount))
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("every amount failure should match ErrInvalidAmount, got %v", err)
			}
		})
	}
}

func TestValidateNote(t *testing.T) {
	t.Parallel()

	if err := ValidateNote("dinner"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := ValidateNote(strings.Repeat("é", MaxNoteLength)); err != nil {
		t.Fatalf("multibyte note at limit should pass, got %v", err)
	}

	if err := ValidateNote(strings.Repeat("a", MaxNoteLength+1)); !errors.Is(err, ErrNoteTooLong) {
		t.Fatalf("expected ErrNoteTooLong, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset, _ := ValidatePagination(0, -2)
	if limit != DefaultPageSize || offset != 0 {
		t.Fatalf("expected defaults, got limit=%d offset=%d", limit, offset)
	}

	limit, _, _ = ValidatePagination(5000, 0)
	if limit != MaxPageSize {
		t.Fatalf("expected limit to clamp to %d, got %d", MaxPageSize, limit)
	}
}

func TestClampRecentLimit(t *testing.T) {
	t.Parallel()

	cases := map[int]int{0: DefaultRecentLimit, -1: DefaultRecentLimit, 5: 5, 1000: MaxRecentLimit}
	for in, want := range cases {
		if got := ClampRecentLimit(in); got != want {
			t.Errorf("ClampRecentLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
