package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

func TestExpenseFromDomainFormatsMoney(t *testing.T) {
	e := &domain.Expense{
		ID:          "exp-1",
		CreatedBy:   "alice",
		TotalAmount: decimal.NewFromInt(100),
		Currency:    "INR",
		CreatedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Shares: []*domain.ExpenseShare{
			{ID: "s1", UserID: "alice", ShareAmount: decimal.RequireFromString("33.34"), PaidAmount: decimal.RequireFromString("33.34"), Status: domain.ShareStatusSettled},
			{ID: "s2", UserID: "bob", ShareAmount: decimal.RequireFromString("33.33"), PaidAmount: decimal.Zero, Status: domain.ShareStatusOwed},
		},
	}

	resp := ExpenseFromDomain(e)

	if resp.TotalAmount != "100.00" {
		t.Fatalf("expected 100.00, got %s", resp.TotalAmount)
	}
	if len(resp.Shares) != 2 || resp.Shares[1].PaidAmount != "0.00" || resp.Shares[1].Status != "owed" {
		t.Fatalf("unexpected shares: %+v", resp.Shares)
	}
	if resp.GroupID != nil {
		t.Fatalf("expected no group, got %v", *resp.GroupID)
	}
}

func TestBalanceFromDomainKeepsEmptyLists(t *testing.T) {
	resp := BalanceFromDomain(&domain.BalanceSummary{UserID: "alice"})

	if resp.OweList == nil || resp.OwedList == nil || resp.NetList == nil {
		t.Fatalf("expected empty lists to encode as [], got %+v", resp)
	}
	if resp.TotalOwe != "0.00" || resp.TotalOwed != "0.00" {
		t.Fatalf("expected zero totals, got %s %s", resp.TotalOwe, resp.TotalOwed)
	}
}

func TestConsistencyFromReport(t *testing.T) {
	resp := ConsistencyFromReport(&usecase.ConsistencyReport{
		Violations: []domain.ConservationViolation{{
			ExpenseID:   "exp-1",
			TotalAmount: decimal.NewFromInt(100),
			ShareSum:    decimal.NewFromInt(90),
			Reason:      "shares sum to 90.00, expense total is 100.00",
		}},
	})

	if resp.Status != "inconsistent" || resp.Consistent {
		t.Fatalf("expected inconsistent report, got %+v", resp)
	}
	if resp.Violations[0].ShareSum != "90.00" {
		t.Fatalf("unexpected violation: %+v", resp.Violations[0])
	}
}
