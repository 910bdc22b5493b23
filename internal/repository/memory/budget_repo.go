package memory

import (
	"sort"

	"github.com/kantong/kantong-backend/internal/domain"
)

// BudgetRepository implements domain.BudgetRepository over a Store
type BudgetRepository struct {
	store *Store
}

func (r *BudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.categoryTaken(budget.WorkspaceID, budget.Category, 0) {
		return nil, domain.ErrBudgetCategoryExists
	}
	created := copyBudget(budget)
	created.ID = s.id()
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt
	s.budgets[created.ID] = created
	return copyBudget(created), nil
}

func (r *BudgetRepository) GetByID(workspaceID int32, id int32) (*domain.Budget, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.budgets[id]
	if !ok || b.WorkspaceID != workspaceID {
		return nil, domain.ErrBudgetNotFound
	}
	return copyBudget(b), nil
}

func (r *BudgetRepository) GetByCategory(workspaceID int32, category string) (*domain.Budget, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.budgets {
		if b.WorkspaceID == workspaceID && b.Category == category {
			return copyBudget(b), nil
		}
	}
	return nil, domain.ErrBudgetNotFound
}

func (r *BudgetRepository) GetAllByWorkspace(workspaceID int32) ([]*domain.Budget, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*domain.Budget{}
	for _, b := range s.budgets {
		if b.WorkspaceID == workspaceID {
			result = append(result, copyBudget(b))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	return result, nil
}

func (r *BudgetRepository) Update(budget *domain.Budget) (*domain.Budget, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.budgets[budget.ID]
	if !ok || existing.WorkspaceID != budget.WorkspaceID {
		return nil, domain.ErrBudgetNotFound
	}
	if s.categoryTaken(budget.WorkspaceID, budget.Category, budget.ID) {
		return nil, domain.ErrBudgetCategoryExists
	}
	existing.Category = budget.Category
	existing.BudgetAmount = budget.BudgetAmount
	existing.Period = budget.Period
	existing.UpdatedAt = s.now()
	return copyBudget(existing), nil
}

func (r *BudgetRepository) Delete(workspaceID int32, id int32) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.budgets[id]
	if !ok || b.WorkspaceID != workspaceID {
		return domain.ErrBudgetNotFound
	}
	delete(s.budgets, id)
	return nil
}

func (s *Store) categoryTaken(workspaceID int32, category string, exceptID int32) bool {
	for _, b := range s.budgets {
		if b.WorkspaceID == workspaceID && b.Category == category && b.ID != exceptID {
			return true
		}
	}
	return false
}
