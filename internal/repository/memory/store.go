// Package memory is a process-local data store for the guest demo. It holds a
// single seeded workspace and implements the same repository interfaces as the
// postgres package, so services run unchanged on top of it.
package memory

import (
	"sync"
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
)

// GuestWorkspaceID identifies the shared demo workspace
const GuestWorkspaceID int32 = 1

// Store owns every guest entity behind one lock
type Store struct {
	mu sync.RWMutex

	accounts      map[int32]*domain.Account
	transactions  map[int32]*domain.Transaction
	budgets       map[int32]*domain.Budget
	goals         map[int32]*domain.Goal
	contributions map[int32]*domain.Contribution

	nextID int32
	now    func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	s := &Store{now: time.Now}
	s.clear()
	return s
}

// NewSeededStore creates a store filled with demo data for workspaceID
func NewSeededStore(workspaceID int32) *Store {
	s := NewStore()
	s.Reset(workspaceID)
	return s
}

// Reset discards every change and reseeds the demo data
func (s *Store) Reset(workspaceID int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	seed(s, workspaceID, s.now())
}

func (s *Store) clear() {
	s.accounts = make(map[int32]*domain.Account)
	s.transactions = make(map[int32]*domain.Transaction)
	s.budgets = make(map[int32]*domain.Budget)
	s.goals = make(map[int32]*domain.Goal)
	s.contributions = make(map[int32]*domain.Contribution)
	s.nextID = 1
}

// id hands out store-wide unique IDs; callers hold the write lock
func (s *Store) id() int32 {
	id := s.nextID
	s.nextID++
	return id
}

// Accounts returns the account repository view of the store
func (s *Store) Accounts() *AccountRepository { return &AccountRepository{store: s} }

// Transactions returns the transaction repository view of the store
func (s *Store) Transactions() *TransactionRepository { return &TransactionRepository{store: s} }

// Budgets returns the budget repository view of the store
func (s *Store) Budgets() *BudgetRepository { return &BudgetRepository{store: s} }

// Goals returns the goal repository view of the store
func (s *Store) Goals() *GoalRepository { return &GoalRepository{store: s} }

func copyAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

func copyTransaction(t *domain.Transaction) *domain.Transaction {
	c := *t
	if t.TransferAccountID != nil {
		v := *t.TransferAccountID
		c.TransferAccountID = &v
	}
	if t.Category != nil {
		v := *t.Category
		c.Category = &v
	}
	if t.Party != nil {
		v := *t.Party
		c.Party = &v
	}
	if t.ReceiptURL != nil {
		v := *t.ReceiptURL
		c.ReceiptURL = &v
	}
	return &c
}

func copyBudget(b *domain.Budget) *domain.Budget {
	c := *b
	return &c
}

func copyGoal(g *domain.Goal) *domain.Goal {
	c := *g
	if g.TargetDate != nil {
		v := *g.TargetDate
		c.TargetDate = &v
	}
	return &c
}

func copyContribution(ct *domain.Contribution) *domain.Contribution {
	c := *ct
	if ct.Note != nil {
		v := *ct.Note
		c.Note = &v
	}
	return &c
}
