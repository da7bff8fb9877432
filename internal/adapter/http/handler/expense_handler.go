package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// ExpenseHandler handles expense endpoints.
type ExpenseHandler struct {
	ledgerUC *usecase.LedgerUseCase
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(ledgerUC *usecase.LedgerUseCase) *ExpenseHandler {
	return &ExpenseHandler{ledgerUC: ledgerUC}
}

// Create handles POST /expenses.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	expense, err := h.ledgerUC.CreateExpense(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ExpenseFromDomain(expense))
}

// Get handles GET /expenses/{id}.
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	expense, err := h.ledgerUC.GetExpense(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpenseFromDomain(expense))
}

// ListByGroup handles GET /groups/{groupID}/expenses.
func (h *ExpenseHandler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	limit, offset, _ := domain.ValidatePagination(parseIntQuery(r, "limit", 0), parseIntQuery(r, "offset", 0))

	expenses, err := h.ledgerUC.GetGroupExpenses(r.Context(), chi.URLParam(r, "groupID"), limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.ExpenseResponse]{
		Items:  dto.ExpensesFromDomain(expenses),
		Limit:  limit,
		Offset: offset,
	})
}

// RecentActivity handles GET /activity.
func (h *ExpenseHandler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	limit := domain.ClampRecentLimit(parseIntQuery(r, "limit", 0))

	expenses, err := h.ledgerUC.GetRecentActivity(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.ExpenseResponse]{
		Items: dto.ExpensesFromDomain(expenses),
		Limit: limit,
	})
}
