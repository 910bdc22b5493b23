package memory

import (
	"sort"

	"github.com/kantong/kantong-backend/internal/domain"
)

var priorityRank = map[domain.GoalPriority]int{
	domain.GoalPriorityHigh:   0,
	domain.GoalPriorityMedium: 1,
	domain.GoalPriorityLow:    2,
}

// GoalRepository implements domain.GoalRepository over a Store
type GoalRepository struct {
	store *Store
}

func (r *GoalRepository) Create(goal *domain.Goal) (*domain.Goal, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	created := copyGoal(goal)
	created.ID = s.id()
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt
	s.goals[created.ID] = created
	return copyGoal(created), nil
}

func (r *GoalRepository) GetByID(workspaceID int32, id int32) (*domain.Goal, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.goals[id]
	if !ok || g.WorkspaceID != workspaceID {
		return nil, domain.ErrGoalNotFound
	}
	return copyGoal(g), nil
}

// GetAllByWorkspace orders goals like the SQL store: priority, target date (unset last), ID
func (r *GoalRepository) GetAllByWorkspace(workspaceID int32) ([]*domain.Goal, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*domain.Goal{}
	for _, g := range s.goals {
		if g.WorkspaceID == workspaceID {
			result = append(result, copyGoal(g))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if priorityRank[a.Priority] != priorityRank[b.Priority] {
			return priorityRank[a.Priority] < priorityRank[b.Priority]
		}
		switch {
		case a.TargetDate != nil && b.TargetDate != nil && !a.TargetDate.Equal(*b.TargetDate):
			return a.TargetDate.Before(*b.TargetDate)
		case a.TargetDate != nil && b.TargetDate == nil:
			return true
		case a.TargetDate == nil && b.TargetDate != nil:
			return false
		}
		return a.ID < b.ID
	})
	return result, nil
}

// Update runs edit on a copy of the stored goal under the write lock
func (r *GoalRepository) Update(workspaceID int32, id int32, edit domain.GoalEditor) (*domain.Goal, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.goals[id]
	if !ok || existing.WorkspaceID != workspaceID {
		return nil, domain.ErrGoalNotFound
	}
	updated := copyGoal(existing)
	if err := edit(updated); err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.WorkspaceID = existing.WorkspaceID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.now()
	s.goals[id] = updated
	return copyGoal(updated), nil
}

func (r *GoalRepository) Delete(workspaceID int32, id int32) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[id]
	if !ok || g.WorkspaceID != workspaceID {
		return domain.ErrGoalNotFound
	}
	delete(s.goals, id)
	for cid, c := range s.contributions {
		if c.GoalID == id {
			delete(s.contributions, cid)
		}
	}
	return nil
}

// Contribute holds the write lock across read, apply and write so the account
// and goal change together or not at all
func (r *GoalRepository) Contribute(workspaceID, accountID, goalID int32, note *string, apply domain.ContributionApplier) (*domain.ContributionResult, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok || account.WorkspaceID != workspaceID {
		return nil, domain.ErrAccountNotFound
	}
	goal, ok := s.goals[goalID]
	if !ok || goal.WorkspaceID != workspaceID {
		return nil, domain.ErrGoalNotFound
	}

	result, err := apply(copyAccount(account), copyGoal(goal))
	if err != nil {
		return nil, err
	}

	contribution := &domain.Contribution{
		ID:              s.id(),
		WorkspaceID:     workspaceID,
		SourceAccountID: accountID,
		GoalID:          goalID,
		Amount:          result.Goal.CurrentAmount.Sub(goal.CurrentAmount),
		CreatedAt:       s.now(),
	}
	if note != nil {
		v := *note
		contribution.Note = &v
	}

	s.accounts[accountID] = copyAccount(result.Account)
	s.goals[goalID] = copyGoal(result.Goal)
	s.contributions[contribution.ID] = contribution

	result.Contribution = copyContribution(contribution)
	return result, nil
}

func (r *GoalRepository) GetContributions(workspaceID int32, goalID int32) ([]*domain.Contribution, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*domain.Contribution{}
	for _, c := range s.contributions {
		if c.WorkspaceID == workspaceID && c.GoalID == goalID {
			result = append(result, copyContribution(c))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
