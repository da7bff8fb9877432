package domain

import (
	"encoding/json"
	"time"
)

// Event types
const (
	EventTypeExpenseCreated      = "expense.created"
	EventTypeSettlementCompleted = "settlement.completed"
)

// Aggregate types
const (
	AggregateTypeExpense    = "expense"
	AggregateTypeSettlement = "settlement"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// ExpenseCreatedEvent payload
type ExpenseCreatedEvent struct {
	ExpenseID string              `json:"expense_id"`
	GroupID   string              `json:"group_id,omitempty"`
	CreatedBy string              `json:"created_by"`
	Amount    string              `json:"amount"`
	Currency  string              `json:"currency"`
	Note      string              `json:"note"`
	Shares    []ShareEventPayload `json:"shares"`
}

// ShareEventPayload describes one share inside an event.
type ShareEventPayload struct {
	ShareID string `json:"share_id"`
	UserID  string `json:"user_id"`
	Amount  string `json:"amount"`
	Paid    string `json:"paid"`
	Status  string `json:"status"`
}

// SettlementCompletedEvent payload
type SettlementCompletedEvent struct {
	SettlementID string              `json:"settlement_id"`
	FromUserID   string              `json:"from_user_id"`
	ToUserID     string              `json:"to_user_id"`
	Amount       string              `json:"amount"`
	Currency     string              `json:"currency"`
	Method       string              `json:"method"`
	Shares       []ShareEventPayload `json:"shares"`
}

// NewExpenseCreatedEvent builds the outbox payload for a new expense.
func NewExpenseCreatedEvent(e *Expense) ExpenseCreatedEvent {
	ev := ExpenseCreatedEvent{
		ExpenseID: e.ID,
		CreatedBy: e.CreatedBy,
		Amount:    e.TotalAmount.StringFixed(AmountPlaces),
		Currency:  e.Currency,
		Note:      e.Note,
		Shares:    make([]ShareEventPayload, 0, len(e.Shares)),
	}
	if e.GroupID != nil {
		ev.GroupID = *e.GroupID
	}
	for _, s := range e.Shares {
		ev.Shares = append(ev.Shares, ShareEventPayload{
			ShareID: s.ID,
			UserID:  s.UserID,
			Amount:  s.ShareAmount.StringFixed(AmountPlaces),
			Paid:    s.PaidAmount.StringFixed(AmountPlaces),
			Status:  string(s.Status),
		})
	}
	return ev
}

// NewSettlementCompletedEvent builds the outbox payload for a settlement and its allocation.
func NewSettlementCompletedEvent(s *Settlement, alloc Allocation) SettlementCompletedEvent {
	ev := SettlementCompletedEvent{
		SettlementID: s.ID,
		FromUserID:   s.FromUserID,
		ToUserID:     s.ToUserID,
		Amount:       s.Amount.StringFixed(AmountPlaces),
		Currency:     s.Currency,
		Method:       string(s.PaymentMethodID),
		Shares:       make([]ShareEventPayload, 0, len(alloc.Shares)),
	}
	for _, a := range alloc.Shares {
		ev.Shares = append(ev.Shares, ShareEventPayload{
			ShareID: a.ShareID,
			UserID:  s.FromUserID,
			Amount:  a.Applied.StringFixed(AmountPlaces),
			Paid:    a.NewPaid.StringFixed(AmountPlaces),
			Status:  string(a.NewStatus),
		})
	}
	return ev
}

// PayloadMap flattens a typed payload into the generic outbox shape.
func PayloadMap(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
