package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Expense struct {
	ID          string             `json:"id"`
	GroupID     pgtype.Text        `json:"group_id"`
	CreatedBy   string             `json:"created_by"`
	TotalAmount pgtype.Numeric     `json:"total_amount"`
	Currency    string             `json:"currency"`
	Note        string             `json:"note"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

type ExpenseShare struct {
	ID          string             `json:"id"`
	ExpenseID   string             `json:"expense_id"`
	UserID      string             `json:"user_id"`
	ShareAmount pgtype.Numeric     `json:"share_amount"`
	PaidAmount  pgtype.Numeric     `json:"paid_amount"`
	Status      string             `json:"status"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}

type Settlement struct {
	ID            string             `json:"id"`
	FromUserID    string             `json:"from_user_id"`
	ToUserID      string             `json:"to_user_id"`
	Amount        pgtype.Numeric     `json:"amount"`
	Currency      string             `json:"currency"`
	Status        string             `json:"status"`
	PaymentMethod string             `json:"payment_method"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

type User struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}
