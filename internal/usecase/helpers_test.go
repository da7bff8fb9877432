package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/splitledger/internal/adapter/repository/memory"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/idgen"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
	"github.com/iho/splitledger/internal/usecase"
)

// harness wires every use case over one in-memory store.
type harness struct {
	store       *memory.Store
	txManager   *memory.TxManager
	shares      *memory.ShareRepository
	outbox      *memory.OutboxRepository
	settleRepo  *memory.SettlementRepository
	metrics     *metrics.Metrics
	expenses    *usecase.ExpenseUseCase
	settlements *usecase.SettlementUseCase
	balances    *usecase.BalanceUseCase
	ledger      *usecase.LedgerUseCase
	recon       *usecase.ReconciliationUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := memory.NewStore()
	h := &harness{
		store:      store,
		shares:     memory.NewShareRepository(store),
		outbox:     memory.NewOutboxRepository(store),
		settleRepo: memory.NewSettlementRepository(store),
		metrics:    metrics.NewWithRegistry(prometheus.NewRegistry()),
	}

	opts := usecase.Options{
		Locker:  memory.NewLocker(),
		Cache:   memory.NewBalanceCache(time.Minute),
		Metrics: h.metrics,
	}
	h.txManager = memory.NewTxManager(store)
	txManager := h.txManager
	ids := idgen.NewULIDGenerator()

	h.expenses = usecase.NewExpenseUseCase(txManager, memory.NewExpenseRepository(store), h.shares, h.outbox, ids, "INR", opts)
	h.settlements = usecase.NewSettlementUseCase(txManager, h.shares, h.settleRepo, h.outbox, ids, "INR", opts)
	h.balances = usecase.NewBalanceUseCase(h.shares, memory.NewUserDirectory(store), opts)
	h.ledger = usecase.NewLedgerUseCase(h.expenses, h.settlements, h.balances)
	h.recon = usecase.NewReconciliationUseCase(memory.NewLedgerRepository(store))

	return h
}

func (h *harness) expense(t *testing.T, payer, amount string, participants ...string) *domain.Expense {
	t.Helper()

	e, err := h.expenses.CreateExpense(context.Background(), usecase.CreateExpenseInput{
		PayerID:        payer,
		Amount:         dec(amount),
		Note:           "test",
		ParticipantIDs: participants,
	})
	require.NoError(t, err)

	// keep createdAt strictly increasing between expenses
	time.Sleep(time.Millisecond)
	return e
}

func (h *harness) settle(t *testing.T, payer, creditor, amount string) *domain.Settlement {
	t.Helper()

	s, err := h.settlements.Settle(context.Background(), usecase.SettleInput{
		PayerID:    payer,
		CreditorID: creditor,
		Amount:     dec(amount),
		Method:     "upi",
	})
	require.NoError(t, err)
	return s
}

func (h *harness) shareOf(t *testing.T, expenseID, userID string) *domain.ExpenseShare {
	t.Helper()

	e, err := h.expenses.GetExpense(context.Background(), expenseID)
	require.NoError(t, err)
	for _, s := range e.Shares {
		if s.UserID == userID {
			return s
		}
	}
	t.Fatalf("no share for %s on %s", userID, expenseID)
	return nil
}

func memoryTx(h *harness) usecase.TransactionManager {
	return h.txManager
}

func idsFor(t *testing.T) usecase.IDGenerator {
	t.Helper()
	return idgen.NewULIDGenerator()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func asUser(id string) context.Context {
	return domain.WithUser(context.Background(), &domain.User{ID: id})
}
