package handler

import (
	"net/http"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// SettlementHandler handles settlement and balance endpoints.
type SettlementHandler struct {
	ledgerUC *usecase.LedgerUseCase
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(ledgerUC *usecase.LedgerUseCase) *SettlementHandler {
	return &SettlementHandler{ledgerUC: ledgerUC}
}

// Create handles POST /settlements.
func (h *SettlementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSettlementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	settlement, err := h.ledgerUC.Settle(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.SettlementFromDomain(settlement))
}

// List handles GET /settlements.
func (h *SettlementHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, _ := domain.ValidatePagination(parseIntQuery(r, "limit", 0), parseIntQuery(r, "offset", 0))

	settlements, err := h.ledgerUC.GetSettlements(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.SettlementResponse]{
		Items:  dto.SettlementsFromDomain(settlements),
		Limit:  limit,
		Offset: offset,
	})
}

// Balances handles GET /balances.
func (h *SettlementHandler) Balances(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ledgerUC.GetBalances(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(summary))
}
