package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	reconUC   *usecase.ReconciliationUseCase
	operators map[string]struct{}
}

// NewLedgerHandler creates a new LedgerHandler. Only the operator ids may read
// the ledger-wide consistency report.
func NewLedgerHandler(reconUC *usecase.ReconciliationUseCase, operators []string) *LedgerHandler {
	set := make(map[string]struct{}, len(operators))
	for _, id := range operators {
		if id = strings.TrimSpace(id); id != "" {
			set[id] = struct{}{}
		}
	}
	return &LedgerHandler{reconUC: reconUC, operators: set}
}

// CheckConsistency checks if the ledger is consistent.
// The report names expenses of every user, so it is restricted to operators.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	caller, ok := domain.UserFromContext(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrUnauthorized)
		return
	}
	if _, ok := h.operators[caller.ID]; !ok {
		writeError(w, http.StatusForbidden, "forbidden", "the consistency report is restricted to ledger operators")
		return
	}

	report, err := h.reconUC.CheckConsistency(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) && report != nil {
			writeJSON(w, http.StatusConflict, dto.ConsistencyFromReport(report))
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromReport(report))
}

// Reconcile compares one pair's settlements with the payments applied to shares.
// The caller must be one side of the pair.
func (h *LedgerHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	caller, ok := domain.UserFromContext(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrUnauthorized)
		return
	}

	payerID := strings.TrimSpace(r.URL.Query().Get("payer_id"))
	creditorID := strings.TrimSpace(r.URL.Query().Get("creditor_id"))
	if payerID == "" || creditorID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "payer_id and creditor_id are required")
		return
	}

	if caller.ID != payerID && caller.ID != creditorID {
		writeError(w, http.StatusForbidden, "forbidden", "caller is not part of the pair")
		return
	}

	result, err := h.reconUC.ReconcilePair(r.Context(), payerID, creditorID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromResult(result))
}
