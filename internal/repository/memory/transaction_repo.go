package memory

import (
	"time"

	"github.com/kantong/kantong-backend/internal/calc"
	"github.com/kantong/kantong-backend/internal/domain"
)

// TransactionRepository implements domain.TransactionRepository over a Store
type TransactionRepository struct {
	store *Store
}

func (r *TransactionRepository) Create(transaction *domain.Transaction, adjustments []domain.BalanceAdjustment) (*domain.Transaction, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAccounts(transaction); err != nil {
		return nil, err
	}
	if err := s.applyAdjustments(transaction.WorkspaceID, adjustments); err != nil {
		return nil, err
	}

	created := copyTransaction(transaction)
	created.ID = s.id()
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt
	s.transactions[created.ID] = created
	return copyTransaction(created), nil
}

func (r *TransactionRepository) GetByID(workspaceID int32, id int32) (*domain.Transaction, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok || t.WorkspaceID != workspaceID {
		return nil, domain.ErrTransactionNotFound
	}
	return copyTransaction(t), nil
}

func (r *TransactionRepository) GetByWorkspace(workspaceID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	s := r.store
	s.mu.RLock()
	matched := calc.FilterTransactions(s.snapshot(workspaceID), filters)
	s.mu.RUnlock()

	page, pageSize := int32(1), int32(domain.DefaultPageSize)
	if filters != nil {
		if filters.Page > 0 {
			page = filters.Page
		}
		if filters.PageSize > 0 {
			pageSize = min(filters.PageSize, domain.MaxPageSize)
		}
	}
	return calc.Paginate(matched, page, pageSize), nil
}

func (r *TransactionRepository) ListInRange(workspaceID int32, start, end time.Time) ([]*domain.Transaction, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return calc.FilterTransactions(s.snapshot(workspaceID), &domain.TransactionFilters{
		StartDate: &start,
		EndDate:   &end,
	}), nil
}

func (r *TransactionRepository) Update(workspaceID int32, id int32, data *domain.UpdateTransactionData, delta domain.BalanceDeltaFunc) (*domain.Transaction, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok || t.WorkspaceID != workspaceID {
		return nil, domain.ErrTransactionNotFound
	}
	after := copyTransaction(t)
	data.Apply(after)
	if delta != nil {
		if err := s.applyAdjustments(workspaceID, delta(copyTransaction(t), after)); err != nil {
			return nil, err
		}
	}

	after.UpdatedAt = s.now()
	s.transactions[id] = after
	return copyTransaction(after), nil
}

func (r *TransactionRepository) Delete(workspaceID int32, id int32, delta domain.BalanceDeltaFunc) (*domain.Transaction, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok || t.WorkspaceID != workspaceID {
		return nil, domain.ErrTransactionNotFound
	}
	if delta != nil {
		if err := s.applyAdjustments(workspaceID, delta(copyTransaction(t), nil)); err != nil {
			return nil, err
		}
	}
	delete(s.transactions, id)
	return copyTransaction(t), nil
}

func (r *TransactionRepository) SetReceiptURL(workspaceID int32, id int32, url *string) (*domain.Transaction, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok || t.WorkspaceID != workspaceID {
		return nil, domain.ErrTransactionNotFound
	}
	if url == nil {
		t.ReceiptURL = nil
	} else {
		v := *url
		t.ReceiptURL = &v
	}
	t.UpdatedAt = s.now()
	return copyTransaction(t), nil
}

// snapshot copies the workspace's transactions; callers hold the lock
func (s *Store) snapshot(workspaceID int32) []*domain.Transaction {
	result := make([]*domain.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		if t.WorkspaceID == workspaceID {
			result = append(result, copyTransaction(t))
		}
	}
	return result
}

// checkAccounts mirrors the foreign keys of the SQL schema
func (s *Store) checkAccounts(t *domain.Transaction) error {
	account, ok := s.accounts[t.AccountID]
	if !ok || account.WorkspaceID != t.WorkspaceID {
		return domain.ErrAccountNotFound
	}
	if t.TransferAccountID != nil {
		dest, ok := s.accounts[*t.TransferAccountID]
		if !ok || dest.WorkspaceID != t.WorkspaceID {
			return domain.ErrAccountNotFound
		}
	}
	return nil
}
