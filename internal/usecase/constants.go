package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultCurrency is used when no deployment currency is configured.
	DefaultCurrency = "INR"

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyPending is the value stored under a claimed key while the first
	// request is still running.
	IdempotencyPending = "processing"
)
