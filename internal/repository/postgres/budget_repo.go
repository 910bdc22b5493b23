package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kantong/kantong-backend/internal/domain"
)

const budgetColumns = `id, workspace_id, category, budget_amount, period, created_at, updated_at`

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// Create creates a new budget; a second budget for the same category is rejected
func (r *BudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	amount, err := decimalToPgNumeric(budget.BudgetAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid budget amount: %w", err)
	}

	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO budgets (workspace_id, category, budget_amount, period)
		VALUES ($1, $2, $3, $4)
		RETURNING `+budgetColumns,
		budget.WorkspaceID, budget.Category, amount, string(budget.Period),
	)
	created, err := scanBudget(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrBudgetCategoryExists
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a budget by its ID within a workspace
func (r *BudgetRepository) GetByID(workspaceID int32, id int32) (*domain.Budget, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+budgetColumns+` FROM budgets WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id,
	)
	return scanBudgetOrNotFound(row)
}

// GetByCategory retrieves the budget for a category
func (r *BudgetRepository) GetByCategory(workspaceID int32, category string) (*domain.Budget, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+budgetColumns+` FROM budgets WHERE workspace_id = $1 AND category = $2`,
		workspaceID, category,
	)
	return scanBudgetOrNotFound(row)
}

// GetAllByWorkspace retrieves all budgets ordered by category
func (r *BudgetRepository) GetAllByWorkspace(workspaceID int32) ([]*domain.Budget, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+budgetColumns+` FROM budgets WHERE workspace_id = $1 ORDER BY category`,
		workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*domain.Budget{}
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, budget)
	}
	return result, rows.Err()
}

// Update replaces category, amount and period
func (r *BudgetRepository) Update(budget *domain.Budget) (*domain.Budget, error) {
	amount, err := decimalToPgNumeric(budget.BudgetAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid budget amount: %w", err)
	}

	row := r.pool.QueryRow(context.Background(), `
		UPDATE budgets SET category = $3, budget_amount = $4, period = $5, updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2
		RETURNING `+budgetColumns,
		budget.WorkspaceID, budget.ID, budget.Category, amount, string(budget.Period),
	)
	updated, err := scanBudgetOrNotFound(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrBudgetCategoryExists
		}
		return nil, err
	}
	return updated, nil
}

// Delete permanently removes a budget
func (r *BudgetRepository) Delete(workspaceID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM budgets WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

func scanBudgetOrNotFound(row pgx.Row) (*domain.Budget, error) {
	budget, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var (
		b      domain.Budget
		amount pgtype.Numeric
		period string
	)
	if err := row.Scan(&b.ID, &b.WorkspaceID, &b.Category, &amount, &period, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.BudgetAmount = pgNumericToDecimal(amount)
	b.Period = domain.PeriodKind(period)
	return &b, nil
}
