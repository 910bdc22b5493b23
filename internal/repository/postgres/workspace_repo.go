package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kantong/kantong-backend/internal/domain"
)

const workspaceColumns = `w.id, w.user_id, w.name, w.created_at, w.updated_at`

// WorkspaceRepository implements domain.WorkspaceRepository using PostgreSQL
type WorkspaceRepository struct {
	pool *pgxpool.Pool
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(pool *pgxpool.Pool) *WorkspaceRepository {
	return &WorkspaceRepository{pool: pool}
}

// GetByID retrieves a workspace by its ID
func (r *WorkspaceRepository) GetByID(id int32) (*domain.Workspace, error) {
	row := r.pool.QueryRow(context.Background(), `SELECT `+workspaceColumns+` FROM workspaces w WHERE w.id = $1`, id)
	return scanWorkspaceOrNotFound(row)
}

// GetByUserID retrieves a user's first workspace
func (r *WorkspaceRepository) GetByUserID(userID uuid.UUID) (*domain.Workspace, error) {
	pgUserID := pgtype.UUID{Bytes: userID, Valid: true}
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+workspaceColumns+` FROM workspaces w WHERE w.user_id = $1 ORDER BY w.id LIMIT 1`,
		pgUserID,
	)
	return scanWorkspaceOrNotFound(row)
}

// GetByUserSubject retrieves the workspace of the user with the given token subject
func (r *WorkspaceRepository) GetByUserSubject(subject string) (*domain.Workspace, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT `+workspaceColumns+` FROM workspaces w
		JOIN users u ON u.id = w.user_id
		WHERE u.auth_subject = $1
		ORDER BY w.id LIMIT 1`,
		subject,
	)
	return scanWorkspaceOrNotFound(row)
}

// Create creates a new workspace
func (r *WorkspaceRepository) Create(workspace *domain.Workspace) (*domain.Workspace, error) {
	pgUserID := pgtype.UUID{Bytes: workspace.UserID, Valid: true}
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO workspaces AS w (user_id, name) VALUES ($1, $2)
		RETURNING `+workspaceColumns,
		pgUserID, workspace.Name,
	)
	return scanWorkspace(row)
}

// Helper functions

func scanWorkspaceOrNotFound(row pgx.Row) (*domain.Workspace, error) {
	workspace, err := scanWorkspace(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkspaceNotFound
		}
		return nil, err
	}
	return workspace, nil
}

func scanWorkspace(row pgx.Row) (*domain.Workspace, error) {
	var (
		w      domain.Workspace
		userID pgtype.UUID
	)
	if err := row.Scan(&w.ID, &userID, &w.Name, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.UserID = uuid.UUID(userID.Bytes)
	return &w, nil
}
