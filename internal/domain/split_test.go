package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSplitEvenly(t *testing.T) {
	tests := []struct {
		name         string
		total        string
		participants []string
		payer        string
		wantErr      error
		wantShares   map[string]string
	}{
		{
			name:         "three way even split",
			total:        "300",
			participants: []string{"alice", "bob", "carol"},
			payer:        "alice",
			wantShares:   map[string]string{"alice": "100", "bob": "100", "carol": "100"},
		},
		{
			name:         "remainder goes to payer",
			total:        "100",
			participants: []string{"alice", "bob", "carol"},
			payer:        "bob",
			wantShares:   map[string]string{"alice": "33.33", "bob": "33.34", "carol": "33.33"},
		},
		{
			name:         "two cent remainder",
			total:        "10.01",
			participants: []string{"a", "b", "c"},
			payer:        "c",
			wantShares:   map[string]string{"a": "3.33", "b": "3.33", "c": "3.35"},
		},
		{
			name:         "payer only",
			total:        "42.50",
			participants: []string{"alice"},
			payer:        "alice",
			wantShares:   map[string]string{"alice": "42.50"},
		},
		{
			name:         "duplicates collapsed",
			total:        "20",
			participants: []string{"alice", "bob", "alice"},
			payer:        "alice",
			wantShares:   map[string]string{"alice": "10", "bob": "10"},
		},
		{
			name:         "zero amount",
			total:        "0",
			participants: []string{"alice"},
			payer:        "alice",
			wantErr:      ErrInvalidAmount,
		},
		{
			name:         "negative amount",
			total:        "-5",
			participants: []string{"alice"},
			payer:        "alice",
			wantErr:      ErrInvalidAmount,
		},
		{
			name:         "sub-cent amount",
			total:        "10.005",
			participants: []string{"alice"},
			payer:        "alice",
			wantErr:      ErrInvalidAmount,
		},
		{
			name:    "no participants",
			total:   "10",
			payer:   "alice",
			wantErr: ErrEmptyParticipants,
		},
		{
			name:         "payer missing",
			total:        "10",
			participants: []string{"bob", "carol"},
			payer:        "alice",
			wantErr:      ErrPayerNotParticipant,
		},
		{
			name:         "blank participant",
			total:        "10",
			participants: []string{"alice", " "},
			payer:        "alice",
			wantErr:      ErrInvalidParticipant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := decimal.RequireFromString(tt.total)
			splits, err := SplitEvenly(total, tt.participants, tt.payer)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(splits) != len(tt.wantShares) {
				t.Fatalf("expected %d shares, got %d", len(tt.wantShares), len(splits))
			}

			sum := decimal.Zero
			for _, s := range splits {
				want := decimal.RequireFromString(tt.wantShares[s.UserID])
				if !s.ShareAmount.Equal(want) {
					t.Errorf("share for %s = %s, want %s", s.UserID, s.ShareAmount, want)
				}
				sum = sum.Add(s.ShareAmount)

				if s.UserID == tt.payer {
					if s.Status != ShareStatusSettled || !s.PaidAmount.Equal(s.ShareAmount) {
						t.Errorf("payer share should start settled, got %s paid %s", s.Status, s.PaidAmount)
					}
					continue
				}
				if s.Status != ShareStatusOwed || !s.PaidAmount.IsZero() {
					t.Errorf("debtor share should start owed and unpaid, got %s paid %s", s.Status, s.PaidAmount)
				}
			}

			if !sum.Equal(total) {
				t.Errorf("shares sum to %s, want %s", sum, total)
			}
		})
	}
}

func TestSplitEvenlyConservesAcrossSizes(t *testing.T) {
	totals := []string{"0.01", "0.07", "1", "99.99", "100", "1234.56", "1000000.01"}

	for _, raw := range totals {
		total := decimal.RequireFromString(raw)
		for n := 1; n <= 12; n++ {
			participants := make([]string, n)
			for i := range participants {
				participants[i] = string(rune('a' + i))
			}

			splits, err := SplitEvenly(total, participants, participants[n-1])
			if err != nil {
				t.Fatalf("split %s/%d: %v", raw, n, err)
			}

			sum := decimal.Zero
			for _, s := range splits {
				sum = sum.Add(s.ShareAmount)
				if err := (&ExpenseShare{ShareAmount: s.ShareAmount, PaidAmount: s.PaidAmount, Status: s.Status}).Validate(); err != nil {
					t.Fatalf("split %s/%d produced invalid share: %v", raw, n, err)
				}
			}
			if !sum.Equal(total) {
				t.Fatalf("split %s/%d sums to %s", raw, n, sum)
			}
		}
	}
}

func TestSplitEvenlyDeterministic(t *testing.T) {
	total := decimal.RequireFromString("77.77")
	participants := []string{"x", "y", "z", "w"}

	first, err := SplitEvenly(total, participants, "y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := SplitEvenly(total, participants, "y")

	for i := range first {
		if first[i].UserID != second[i].UserID || !first[i].ShareAmount.Equal(second[i].ShareAmount) {
			t.Fatalf("split is not deterministic at %d", i)
		}
	}
}
