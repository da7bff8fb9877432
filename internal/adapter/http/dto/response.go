package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// ShareResponse represents one participant's share in API responses.
type ShareResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	ShareAmount string `json:"share_amount"`
	PaidAmount  string `json:"paid_amount"`
	Status      string `json:"status"`
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID          string          `json:"id"`
	GroupID     *string         `json:"group_id,omitempty"`
	CreatedBy   string          `json:"created_by"`
	TotalAmount string          `json:"total_amount"`
	Currency    string          `json:"currency"`
	Note        string          `json:"note"`
	CreatedAt   time.Time       `json:"created_at"`
	Shares      []ShareResponse `json:"shares"`
}

// ExpenseFromDomain converts domain expense to response.
func ExpenseFromDomain(e *domain.Expense) *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		CreatedBy:   e.CreatedBy,
		TotalAmount: money(e.TotalAmount),
		Currency:    e.Currency,
		Note:        e.Note,
		CreatedAt:   e.CreatedAt,
		Shares:      make([]ShareResponse, 0, len(e.Shares)),
	}
	for _, s := range e.Shares {
		resp.Shares = append(resp.Shares, ShareResponse{
			ID:          s.ID,
			UserID:      s.UserID,
			ShareAmount: money(s.ShareAmount),
			PaidAmount:  money(s.PaidAmount),
			Status:      string(s.Status),
		})
	}
	return resp
}

// ExpensesFromDomain converts a page of expenses.
func ExpensesFromDomain(expenses []*domain.Expense) []*ExpenseResponse {
	out := make([]*ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, ExpenseFromDomain(e))
	}
	return out
}

// SettlementResponse represents a settlement in API responses.
type SettlementResponse struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
	Status     string    `json:"status"`
	Method     string    `json:"method"`
	CreatedAt  time.Time `json:"created_at"`
}

// SettlementFromDomain converts domain settlement to response.
func SettlementFromDomain(s *domain.Settlement) *SettlementResponse {
	return &SettlementResponse{
		ID:         s.ID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     money(s.Amount),
		Currency:   s.Currency,
		Status:     string(s.Status),
		Method:     string(s.PaymentMethodID),
		CreatedAt:  s.CreatedAt,
	}
}

// SettlementsFromDomain converts a page of settlements.
func SettlementsFromDomain(settlements []*domain.Settlement) []*SettlementResponse {
	out := make([]*SettlementResponse, 0, len(settlements))
	for _, s := range settlements {
		out = append(out, SettlementFromDomain(s))
	}
	return out
}

// CounterpartyResponse is the amount outstanding with one other user.
type CounterpartyResponse struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Amount   string `json:"amount"`
}

// BalanceResponse represents the caller's balance summary.
type BalanceResponse struct {
	UserID    string                 `json:"user_id"`
	TotalOwe  string                 `json:"total_owe"`
	TotalOwed string                 `json:"total_owed"`
	OweList   []CounterpartyResponse `json:"owe_list"`
	OwedList  []CounterpartyResponse `json:"owed_list"`
	NetList   []CounterpartyResponse `json:"net_list"`
}

// BalanceFromDomain converts a balance summary to response.
func BalanceFromDomain(b *domain.BalanceSummary) *BalanceResponse {
	return &BalanceResponse{
		UserID:    b.UserID,
		TotalOwe:  money(b.TotalOwe),
		TotalOwed: money(b.TotalOwed),
		OweList:   counterparties(b.OweList),
		OwedList:  counterparties(b.OwedList),
		NetList:   counterparties(b.NetList),
	}
}

func counterparties(list []domain.CounterpartyBalance) []CounterpartyResponse {
	out := make([]CounterpartyResponse, 0, len(list))
	for _, c := range list {
		out = append(out, CounterpartyResponse{
			UserID:   c.UserID,
			UserName: c.UserName,
			Amount:   money(c.Amount),
		})
	}
	return out
}

// ViolationResponse describes one expense that breaks the share invariants.
type ViolationResponse struct {
	ExpenseID   string `json:"expense_id"`
	TotalAmount string `json:"total_amount"`
	ShareSum    string `json:"share_sum"`
	Reason      string `json:"reason"`
}

// ConsistencyResponse is the result of a ledger-wide check.
type ConsistencyResponse struct {
	Status      string              `json:"status"`
	Consistent  bool                `json:"consistent"`
	Violations  []ViolationResponse `json:"violations"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// ConsistencyFromReport converts a consistency report to response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	resp := &ConsistencyResponse{
		Status:      "consistent",
		Consistent:  r.Consistent,
		Violations:  make([]ViolationResponse, 0, len(r.Violations)),
		GeneratedAt: r.GeneratedAt,
	}
	if !r.Consistent {
		resp.Status = "inconsistent"
	}
	for _, v := range r.Violations {
		resp.Violations = append(resp.Violations, ViolationResponse{
			ExpenseID:   v.ExpenseID,
			TotalAmount: money(v.TotalAmount),
			ShareSum:    money(v.ShareSum),
			Reason:      v.Reason,
		})
	}
	return resp
}

// ReconciliationResponse compares one pair's settlements with the share payments.
type ReconciliationResponse struct {
	PayerID      string    `json:"payer_id"`
	CreditorID   string    `json:"creditor_id"`
	Settled      string    `json:"settled"`
	Applied      string    `json:"applied"`
	Difference   string    `json:"difference"`
	IsReconciled bool      `json:"is_reconciled"`
	LastChecked  time.Time `json:"last_checked"`
}

// ReconciliationFromResult converts a reconciliation result to response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		PayerID:      r.PayerID,
		CreditorID:   r.CreditorID,
		Settled:      money(r.Settled),
		Applied:      money(r.Applied),
		Difference:   money(r.Difference),
		IsReconciled: r.IsReconciled,
		LastChecked:  r.LastChecked,
	}
}

// ListResponse wraps a page of items.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(domain.AmountPlaces)
}
