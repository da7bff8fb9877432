// Package memory is a process-local implementation of the ledger repositories.
// A transaction holds the store's write lock from Begin until Commit or Rollback,
// so transactions are fully serialized and buffered writes become visible at once.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("memory: transaction already finished")

// ErrForeignTx is returned when a repository receives a transaction from another backend.
var ErrForeignTx = errors.New("memory: transaction does not belong to this store")

// Store holds all ledger state.
type Store struct {
	mu sync.RWMutex

	expenses        map[string]*domain.Expense
	shares          map[string]*domain.ExpenseShare
	sharesByExpense map[string][]string
	settlements     []*domain.Settlement
	outbox          []*domain.OutboxEvent
	users           map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		expenses:        make(map[string]*domain.Expense),
		shares:          make(map[string]*domain.ExpenseShare),
		sharesByExpense: make(map[string][]string),
		users:           make(map[string]string),
	}
}

// PutUser registers a display name.
func (s *Store) PutUser(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = name
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin acquires the store's write lock for the lifetime of the transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.store.mu.Lock()
	return &Tx{store: m.store}, nil
}

// Tx buffers writes until Commit.
type Tx struct {
	store *Store
	ops   []func()
	done  bool
}

// Commit applies the buffered writes and releases the lock.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	defer t.store.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	for _, op := range t.ops {
		op()
	}
	return nil
}

// Rollback discards the buffered writes. It is a no-op after Commit.
func (t *Tx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.ops = nil
	t.store.mu.Unlock()
	return nil
}

func (t *Tx) stage(op func()) {
	t.ops = append(t.ops, op)
}

func (s *Store) txFrom(tx usecase.Transaction) (*Tx, error) {
	mtx, ok := tx.(*Tx)
	if !ok || mtx.store != s {
		return nil, ErrForeignTx
	}
	if mtx.done {
		return nil, ErrTxDone
	}
	return mtx, nil
}

func cloneExpense(e *domain.Expense) *domain.Expense {
	c := *e
	if e.GroupID != nil {
		g := *e.GroupID
		c.GroupID = &g
	}
	c.Shares = nil
	return &c
}

func cloneShare(s *domain.ExpenseShare) *domain.ExpenseShare {
	c := *s
	return &c
}

// expenseWithShares must be called with the lock held.
func (s *Store) expenseWithShares(e *domain.Expense) *domain.Expense {
	c := cloneExpense(e)
	for _, id := range s.sharesByExpense[e.ID] {
		c.Shares = append(c.Shares, cloneShare(s.shares[id]))
	}
	return c
}
