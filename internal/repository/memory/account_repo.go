package memory

import (
	"sort"

	"github.com/kantong/kantong-backend/internal/domain"
)

// AccountRepository implements domain.AccountRepository over a Store
type AccountRepository struct {
	store *Store
}

func (r *AccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	created := copyAccount(account)
	created.ID = s.id()
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt
	s.accounts[created.ID] = created
	return copyAccount(created), nil
}

func (r *AccountRepository) GetByID(workspaceID int32, id int32) (*domain.Account, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok || account.WorkspaceID != workspaceID {
		return nil, domain.ErrAccountNotFound
	}
	return copyAccount(account), nil
}

func (r *AccountRepository) GetAllByWorkspace(workspaceID int32) ([]*domain.Account, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*domain.Account{}
	for _, account := range s.accounts {
		if account.WorkspaceID == workspaceID {
			result = append(result, copyAccount(account))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].ID < result[j].ID
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *AccountRepository) Update(workspaceID int32, id int32, name string) (*domain.Account, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok || account.WorkspaceID != workspaceID {
		return nil, domain.ErrAccountNotFound
	}
	account.Name = name
	account.UpdatedAt = s.now()
	return copyAccount(account), nil
}

func (r *AccountRepository) Delete(workspaceID int32, id int32) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok || account.WorkspaceID != workspaceID {
		return domain.ErrAccountNotFound
	}
	if s.accountInUse(id) {
		return domain.ErrAccountHasTransactions
	}
	delete(s.accounts, id)
	return nil
}

func (r *AccountRepository) HasTransactions(workspaceID int32, id int32) (bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok || account.WorkspaceID != workspaceID {
		return false, nil
	}
	return s.accountInUse(id), nil
}

// accountInUse requires the lock to be held
func (s *Store) accountInUse(id int32) bool {
	for _, t := range s.transactions {
		if t.AccountID == id || (t.TransferAccountID != nil && *t.TransferAccountID == id) {
			return true
		}
	}
	for _, c := range s.contributions {
		if c.SourceAccountID == id {
			return true
		}
	}
	return false
}

// applyAdjustments validates every target before changing any balance; callers hold the write lock
func (s *Store) applyAdjustments(workspaceID int32, adjustments []domain.BalanceAdjustment) error {
	for _, adj := range adjustments {
		account, ok := s.accounts[adj.AccountID]
		if !ok || account.WorkspaceID != workspaceID {
			return domain.ErrAccountNotFound
		}
	}
	now := s.now()
	for _, adj := range adjustments {
		account := s.accounts[adj.AccountID]
		account.Balance = account.Balance.Add(adj.Amount)
		account.UpdatedAt = now
	}
	return nil
}
