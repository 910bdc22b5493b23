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

const goalColumns = `id, workspace_id, name, target_amount, current_amount, target_date, priority, created_at, updated_at`

const contributionColumns = `id, workspace_id, account_id, goal_id, amount, note, created_at`

// GoalRepository implements domain.GoalRepository using PostgreSQL
type GoalRepository struct {
	pool *pgxpool.Pool
}

// NewGoalRepository creates a new GoalRepository
func NewGoalRepository(pool *pgxpool.Pool) *GoalRepository {
	return &GoalRepository{pool: pool}
}

// Create creates a new goal
func (r *GoalRepository) Create(goal *domain.Goal) (*domain.Goal, error) {
	target, err := decimalToPgNumeric(goal.TargetAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid target amount: %w", err)
	}
	current, err := decimalToPgNumeric(goal.CurrentAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid current amount: %w", err)
	}

	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO goals (workspace_id, name, target_amount, current_amount, target_date, priority)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+goalColumns,
		goal.WorkspaceID, goal.Name, target, current, timePtrToPgDate(goal.TargetDate), string(goal.Priority),
	)
	return scanGoal(row)
}

// GetByID retrieves a goal by its ID within a workspace
func (r *GoalRepository) GetByID(workspaceID int32, id int32) (*domain.Goal, error) {
	return getGoal(context.Background(), r.pool, workspaceID, id, false)
}

// GetAllByWorkspace retrieves goals ordered by priority then target date
func (r *GoalRepository) GetAllByWorkspace(workspaceID int32) ([]*domain.Goal, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT `+goalColumns+` FROM goals
		WHERE workspace_id = $1
		ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END,
			target_date NULLS LAST, id`,
		workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*domain.Goal{}
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, goal)
	}
	return result, rows.Err()
}

// Update locks the goal row and lets edit change it before writing it back.
// Contributions take the same lock, so an edit never overwrites one.
func (r *GoalRepository) Update(workspaceID int32, id int32, edit domain.GoalEditor) (*domain.Goal, error) {
	ctx := context.Background()

	var updated *domain.Goal
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		goal, err := getGoal(ctx, tx, workspaceID, id, true)
		if err != nil {
			return err
		}
		if err := edit(goal); err != nil {
			return err
		}
		goal.WorkspaceID = workspaceID
		goal.ID = id
		updated, err = updateGoal(ctx, tx, goal)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete permanently removes a goal and its contribution history
func (r *GoalRepository) Delete(workspaceID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM goals WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

// Contribute locks the account and goal rows, lets apply compute their new state
// and persists both plus the contribution row. Either everything commits or nothing does.
func (r *GoalRepository) Contribute(workspaceID, accountID, goalID int32, note *string, apply domain.ContributionApplier) (*domain.ContributionResult, error) {
	ctx := context.Background()

	var result *domain.ContributionResult
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		// Fixed lock order (account, then goal) avoids deadlocks between concurrent contributions
		account, err := getAccountForUpdate(ctx, tx, workspaceID, accountID)
		if err != nil {
			return err
		}
		goal, err := getGoal(ctx, tx, workspaceID, goalID, true)
		if err != nil {
			return err
		}

		result, err = apply(account, goal)
		if err != nil {
			return err
		}

		if err := setAccountBalance(ctx, tx, result.Account); err != nil {
			return fmt.Errorf("update account balance: %w", err)
		}
		if result.Goal, err = updateGoal(ctx, tx, result.Goal); err != nil {
			return fmt.Errorf("update goal: %w", err)
		}

		amount, err := decimalToPgNumeric(result.Goal.CurrentAmount.Sub(goal.CurrentAmount))
		if err != nil {
			return fmt.Errorf("invalid contribution amount: %w", err)
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO goal_contributions (workspace_id, account_id, goal_id, amount, note)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+contributionColumns,
			workspaceID, accountID, goalID, amount, stringPtrToPgText(note),
		)
		result.Contribution, err = scanContribution(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetContributions lists a goal's contributions, newest first
func (r *GoalRepository) GetContributions(workspaceID int32, goalID int32) ([]*domain.Contribution, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT `+contributionColumns+` FROM goal_contributions
		WHERE workspace_id = $1 AND goal_id = $2
		ORDER BY created_at DESC, id DESC`,
		workspaceID, goalID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*domain.Contribution{}
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func getGoal(ctx context.Context, q querier, workspaceID, id int32, lock bool) (*domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE workspace_id = $1 AND id = $2`
	if lock {
		query += ` FOR UPDATE`
	}
	goal, err := scanGoal(q.QueryRow(ctx, query, workspaceID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, err
	}
	return goal, nil
}

func updateGoal(ctx context.Context, q querier, goal *domain.Goal) (*domain.Goal, error) {
	target, err := decimalToPgNumeric(goal.TargetAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid target amount: %w", err)
	}
	current, err := decimalToPgNumeric(goal.CurrentAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid current amount: %w", err)
	}

	row := q.QueryRow(ctx, `
		UPDATE goals SET name = $3, target_amount = $4, current_amount = $5, target_date = $6,
			priority = $7, updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2
		RETURNING `+goalColumns,
		goal.WorkspaceID, goal.ID, goal.Name, target, current, timePtrToPgDate(goal.TargetDate), string(goal.Priority),
	)
	updated, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, err
	}
	return updated, nil
}

func scanGoal(row pgx.Row) (*domain.Goal, error) {
	var (
		g               domain.Goal
		target, current pgtype.Numeric
		targetDate      pgtype.Date
		priority        string
	)
	err := row.Scan(&g.ID, &g.WorkspaceID, &g.Name, &target, &current, &targetDate, &priority, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	g.TargetAmount = pgNumericToDecimal(target)
	g.CurrentAmount = pgNumericToDecimal(current)
	g.TargetDate = pgDateToTimePtr(targetDate)
	g.Priority = domain.GoalPriority(priority)
	return &g, nil
}

func scanContribution(row pgx.Row) (*domain.Contribution, error) {
	var (
		c      domain.Contribution
		amount pgtype.Numeric
		note   pgtype.Text
	)
	if err := row.Scan(&c.ID, &c.WorkspaceID, &c.SourceAccountID, &c.GoalID, &amount, &note, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Amount = pgNumericToDecimal(amount)
	c.Note = pgTextToStringPtr(note)
	return &c, nil
}
