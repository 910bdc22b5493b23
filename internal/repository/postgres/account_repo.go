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

const accountColumns = `id, workspace_id, name, type, balance, currency, created_at, updated_at`

// AccountRepository implements domain.AccountRepository using PostgreSQL
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create creates a new account
func (r *AccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	ctx := context.Background()
	balance, err := decimalToPgNumeric(account.Balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (workspace_id, name, type, balance, currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+accountColumns,
		account.WorkspaceID, account.Name, string(account.Type), balance, account.Currency,
	)
	return scanAccount(row)
}

// GetByID retrieves an account by its ID within a workspace
func (r *AccountRepository) GetByID(workspaceID int32, id int32) (*domain.Account, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+accountColumns+` FROM accounts WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id,
	)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// GetAllByWorkspace retrieves all accounts for a workspace
func (r *AccountRepository) GetAllByWorkspace(workspaceID int32) ([]*domain.Account, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+accountColumns+` FROM accounts WHERE workspace_id = $1 ORDER BY name, id`,
		workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, account)
	}
	return result, rows.Err()
}

// Update updates an account's name
func (r *AccountRepository) Update(workspaceID int32, id int32, name string) (*domain.Account, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE accounts SET name = $3, updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2
		RETURNING `+accountColumns,
		workspaceID, id, name,
	)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// Delete permanently removes an account
func (r *AccountRepository) Delete(workspaceID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM accounts WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id,
	)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return domain.ErrAccountHasTransactions
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// HasTransactions reports whether any transaction or goal contribution references the account
func (r *AccountRepository) HasTransactions(workspaceID int32, id int32) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(context.Background(), `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE workspace_id = $1 AND (account_id = $2 OR transfer_account_id = $2)
		) OR EXISTS (
			SELECT 1 FROM goal_contributions WHERE workspace_id = $1 AND account_id = $2
		)`,
		workspaceID, id,
	).Scan(&exists)
	return exists, err
}

// getAccountForUpdate reads an account and locks its row until tx ends
func getAccountForUpdate(ctx context.Context, q querier, workspaceID, id int32) (*domain.Account, error) {
	row := q.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE workspace_id = $1 AND id = $2 FOR UPDATE`,
		workspaceID, id,
	)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// applyBalanceAdjustments adds each signed amount to its account balance
func applyBalanceAdjustments(ctx context.Context, q querier, workspaceID int32, adjustments []domain.BalanceAdjustment) error {
	for _, adj := range adjustments {
		amount, err := decimalToPgNumeric(adj.Amount)
		if err != nil {
			return fmt.Errorf("invalid adjustment: %w", err)
		}
		tag, err := q.Exec(ctx, `
			UPDATE accounts SET balance = balance + $3, updated_at = NOW()
			WHERE workspace_id = $1 AND id = $2`,
			workspaceID, adj.AccountID, amount,
		)
		if err != nil {
			return fmt.Errorf("adjust balance of account %d: %w", adj.AccountID, err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrAccountNotFound
		}
	}
	return nil
}

func setAccountBalance(ctx context.Context, q querier, account *domain.Account) error {
	balance, err := decimalToPgNumeric(account.Balance)
	if err != nil {
		return fmt.Errorf("invalid balance: %w", err)
	}
	_, err = q.Exec(ctx, `
		UPDATE accounts SET balance = $3, updated_at = $4
		WHERE workspace_id = $1 AND id = $2`,
		account.WorkspaceID, account.ID, balance, account.UpdatedAt,
	)
	return err
}

// Helper functions

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a        domain.Account
		typ      string
		balance  pgtype.Numeric
		currency string
	)
	if err := row.Scan(&a.ID, &a.WorkspaceID, &a.Name, &typ, &balance, &currency, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Type = domain.AccountType(typ)
	a.Balance = pgNumericToDecimal(balance)
	a.Currency = currency
	return &a, nil
}
