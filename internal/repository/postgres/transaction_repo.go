package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kantong/kantong-backend/internal/domain"
)

const transactionColumns = `id, workspace_id, account_id, transfer_account_id, description, amount, type, status,
	category, party, date, receipt_url, created_at, updated_at`

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts a transaction and applies its balance adjustments atomically
func (r *TransactionRepository) Create(transaction *domain.Transaction, adjustments []domain.BalanceAdjustment) (*domain.Transaction, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	var created *domain.Transaction
	err = withTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO transactions (workspace_id, account_id, transfer_account_id, description, amount,
				type, status, category, party, date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING `+transactionColumns,
			transaction.WorkspaceID,
			transaction.AccountID,
			int32PtrToPgInt4(transaction.TransferAccountID),
			transaction.Description,
			amount,
			string(transaction.Type),
			string(transaction.Status),
			stringPtrToPgText(transaction.Category),
			stringPtrToPgText(transaction.Party),
			transaction.Date,
		)
		var err error
		created, err = scanTransaction(row)
		if err != nil {
			if isPgForeignKeyViolation(err) {
				return domain.ErrAccountNotFound
			}
			return err
		}
		return applyBalanceAdjustments(ctx, tx, transaction.WorkspaceID, adjustments)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a transaction by its ID within a workspace
func (r *TransactionRepository) GetByID(workspaceID int32, id int32) (*domain.Transaction, error) {
	return getTransaction(context.Background(), r.pool, workspaceID, id, false)
}

// GetByWorkspace retrieves transactions for a workspace with optional filters and pagination
func (r *TransactionRepository) GetByWorkspace(workspaceID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	ctx := context.Background()

	// Set default pagination values
	page := int32(1)
	pageSize := int32(domain.DefaultPageSize)

	if filters != nil {
		if filters.Page > 0 {
			page = filters.Page
		}
		if filters.PageSize > 0 {
			pageSize = filters.PageSize
			if pageSize > domain.MaxPageSize {
				pageSize = domain.MaxPageSize
			}
		}
	}

	offset := (page - 1) * pageSize
	where, args := buildTransactionFilter(workspaceID, filters)

	var totalItems int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE `+where, args...).Scan(&totalItems); err != nil {
		return nil, err
	}

	args = append(args, pageSize, offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM transactions WHERE %s ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, where, len(args)-1, len(args),
	), args...)
	if err != nil {
		return nil, err
	}
	result, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}

	// Calculate total pages
	totalPages := int32(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) > 0 {
		totalPages++
	}

	return &domain.PaginatedTransactions{
		Data:       result,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// ListInRange returns every transaction dated within [start, end], newest first
func (r *TransactionRepository) ListInRange(workspaceID int32, start, end time.Time) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT `+transactionColumns+` FROM transactions
		WHERE workspace_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC, id DESC`,
		workspaceID, start, end,
	)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

// Update changes the mutable fields of a transaction and applies the balance
// adjustments in one transaction. The adjustments are derived from the locked
// row, so concurrent edits cannot apply the same status change twice.
func (r *TransactionRepository) Update(workspaceID int32, id int32, data *domain.UpdateTransactionData, delta domain.BalanceDeltaFunc) (*domain.Transaction, error) {
	ctx := context.Background()

	var updated *domain.Transaction
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		locked, err := getTransaction(ctx, tx, workspaceID, id, true)
		if err != nil {
			return err
		}
		after := *locked
		data.Apply(&after)

		sets := []string{"updated_at = NOW()"}
		args := []any{workspaceID, id}
		set := func(column string, value any) {
			args = append(args, value)
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		}
		if data.Description != nil {
			set("description", *data.Description)
		}
		if data.Category != nil {
			set("category", emptyToNullText(*data.Category))
		}
		if data.Party != nil {
			set("party", emptyToNullText(*data.Party))
		}
		if data.Status != nil {
			set("status", string(*data.Status))
		}
		if data.Date != nil {
			set("date", *data.Date)
		}

		row := tx.QueryRow(ctx, fmt.Sprintf(
			`UPDATE transactions SET %s WHERE workspace_id = $1 AND id = $2 RETURNING %s`,
			strings.Join(sets, ", "), transactionColumns,
		), args...)
		updated, err = scanTransaction(row)
		if err != nil {
			return err
		}
		if delta == nil {
			return nil
		}
		return applyBalanceAdjustments(ctx, tx, workspaceID, delta(locked, &after))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete permanently removes a transaction and applies the reversing
// adjustments derived from the locked row
func (r *TransactionRepository) Delete(workspaceID int32, id int32, delta domain.BalanceDeltaFunc) (*domain.Transaction, error) {
	ctx := context.Background()

	var deleted *domain.Transaction
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		locked, err := getTransaction(ctx, tx, workspaceID, id, true)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE workspace_id = $1 AND id = $2`, workspaceID, id); err != nil {
			return err
		}
		deleted = locked
		if delta == nil {
			return nil
		}
		return applyBalanceAdjustments(ctx, tx, workspaceID, delta(locked, nil))
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// SetReceiptURL stores or clears the receipt attached to a transaction
func (r *TransactionRepository) SetReceiptURL(workspaceID int32, id int32, url *string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE transactions SET receipt_url = $3, updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2
		RETURNING `+transactionColumns,
		workspaceID, id, stringPtrToPgText(url),
	)
	transaction, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// buildTransactionFilter returns a WHERE clause and its positional args
func buildTransactionFilter(workspaceID int32, filters *domain.TransactionFilters) (string, []any) {
	conds := []string{"workspace_id = $1"}
	args := []any{workspaceID}
	add := func(format string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}

	if filters != nil {
		if filters.AccountID != nil {
			args = append(args, *filters.AccountID)
			n := len(args)
			conds = append(conds, fmt.Sprintf("(account_id = $%d OR transfer_account_id = $%d)", n, n))
		}
		if filters.Category != nil {
			add("category = $%d", *filters.Category)
		}
		if filters.Type != nil {
			add("type = $%d", string(*filters.Type))
		}
		if filters.Status != nil {
			add("status = $%d", string(*filters.Status))
		}
		if filters.Party != nil {
			add("party ILIKE $%d", "%"+escapeLike(*filters.Party)+"%")
		}
		if filters.Search != nil {
			add("description ILIKE $%d", "%"+escapeLike(*filters.Search)+"%")
		}
		if filters.StartDate != nil {
			add("date >= $%d", *filters.StartDate)
		}
		if filters.EndDate != nil {
			add("date <= $%d", *filters.EndDate)
		}
	}
	return strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func emptyToNullText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func getTransaction(ctx context.Context, q querier, workspaceID, id int32, lock bool) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE workspace_id = $1 AND id = $2`
	if lock {
		query += ` FOR UPDATE`
	}
	transaction, err := scanTransaction(q.QueryRow(ctx, query, workspaceID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	defer rows.Close()
	result := []*domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t               domain.Transaction
		transferAccount pgtype.Int4
		amount          pgtype.Numeric
		typ, status     string
		category, party pgtype.Text
		receiptURL      pgtype.Text
	)
	err := row.Scan(
		&t.ID, &t.WorkspaceID, &t.AccountID, &transferAccount, &t.Description, &amount, &typ, &status,
		&category, &party, &t.Date, &receiptURL, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.TransferAccountID = pgInt4ToInt32Ptr(transferAccount)
	t.Amount = pgNumericToDecimal(amount)
	t.Type = domain.TransactionType(typ)
	t.Status = domain.TransactionStatus(status)
	t.Category = pgTextToStringPtr(category)
	t.Party = pgTextToStringPtr(party)
	t.ReceiptURL = pgTextToStringPtr(receiptURL)
	return &t, nil
}
