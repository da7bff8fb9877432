package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
)

var (
	// ErrInconsistentLedger is returned when stored shares break conservation.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: expense shares do not conserve totals")
)

// ReconciliationUseCase checks stored state against the ledger invariants.
type ReconciliationUseCase struct {
	ledgerRepo LedgerRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(ledgerRepo LedgerRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{ledgerRepo: ledgerRepo}
}

// ConsistencyReport lists every expense that breaks the share invariants.
type ConsistencyReport struct {
	Violations  []domain.ConservationViolation
	Consistent  bool
	GeneratedAt time.Time
}

// CheckConsistency scans every expense. It returns the report together with
// ErrInconsistentLedger when any violation is found.
func (uc *ReconciliationUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	violations, err := uc.ledgerRepo.FindConservationViolations(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError("check consistency", err)
	}

	report := &ConsistencyReport{
		Violations:  violations,
		Consistent:  len(violations) == 0,
		GeneratedAt: time.Now().UTC(),
	}

	if !report.Consistent {
		return report, ErrInconsistentLedger
	}

	return report, nil
}

// ReconciliationResult compares the settlement receipts of one pair with what
// was applied to shares.
type ReconciliationResult struct {
	PayerID      string
	CreditorID   string
	Settled      decimal.Decimal
	Applied      decimal.Decimal
	Difference   decimal.Decimal
	IsReconciled bool
	LastChecked  time.Time
}

// ReconcilePair checks that every settled amount from payer to creditor is
// reflected in the payer's shares of the creditor's expenses.
func (uc *ReconciliationUseCase) ReconcilePair(ctx context.Context, payerID, creditorID string) (*ReconciliationResult, error) {
	if payerID == creditorID {
		return nil, domain.ErrSelfSettlement
	}

	settled, applied, err := uc.ledgerRepo.PairTotals(ctx, payerID, creditorID)
	if err != nil {
		return nil, domain.NewPersistenceError("pair totals", err)
	}

	diff := settled.Sub(applied)

	return &ReconciliationResult{
		PayerID:      payerID,
		CreditorID:   creditorID,
		Settled:      settled,
		Applied:      applied,
		Difference:   diff,
		IsReconciled: diff.IsZero(),
		LastChecked:  time.Now().UTC(),
	}, nil
}
