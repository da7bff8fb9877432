package dto

import (
	"errors"
	"testing"

	"github.com/iho/splitledger/internal/domain"
)

func TestCreateExpenseRequest_ToUseCaseInput(t *testing.T) {
	group := "trip"
	req := &CreateExpenseRequest{
		GroupID:        &group,
		Amount:         " 300.00 ",
		Note:           "dinner",
		ParticipantIDs: []string{"alice", "bob"},
	}

	got, err := req.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.GroupID != &group || got.Note != "dinner" || len(got.ParticipantIDs) != 2 {
		t.Fatalf("unexpected input: %+v", got)
	}
	if got.Amount.String() != "300" {
		t.Fatalf("expected amount 300, got %s", got.Amount)
	}
}

func TestParseAmountRejectsNonDecimals(t *testing.T) {
	for _, raw := range []string{"", "   ", "abc", "1,000"} {
		req := &CreateSettlementRequest{CreditorID: "alice", Amount: raw, Method: "upi"}
		if _, err := req.ToUseCaseInput(); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("amount %q: expected ErrInvalidAmount, got %v", raw, err)
		}
	}
}

func TestCreateSettlementRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateSettlementRequest{CreditorID: "alice", Amount: "60.5", Method: "UPI"}

	got, err := req.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.CreditorID != "alice" || got.Method != "UPI" || got.Amount.StringFixed(2) != "60.50" {
		t.Fatalf("unexpected input: %+v", got)
	}
}
