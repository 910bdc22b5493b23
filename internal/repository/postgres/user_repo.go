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

const userColumns = `id, auth_subject, email, name, avatar_url, created_at, updated_at`

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID retrieves a user by their UUID
func (r *UserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	pgID := pgtype.UUID{Bytes: id, Valid: true}
	row := r.pool.QueryRow(context.Background(), `SELECT `+userColumns+` FROM users WHERE id = $1`, pgID)
	return scanUserOrNotFound(row)
}

// GetBySubject retrieves a user by the subject claim of their token
func (r *UserRepository) GetBySubject(subject string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(), `SELECT `+userColumns+` FROM users WHERE auth_subject = $1`, subject)
	return scanUserOrNotFound(row)
}

// UpdateName updates only the user's name
func (r *UserRepository) UpdateName(subject string, name string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE users SET name = $2, updated_at = NOW()
		WHERE auth_subject = $1
		RETURNING `+userColumns,
		subject, pgtype.Text{String: name, Valid: true},
	)
	return scanUserOrNotFound(row)
}

// CreateOrGetBySubject creates a new user or returns the existing one (upsert on login).
// Email and avatar are refreshed from the token; a name set by the user is kept.
func (r *UserRepository) CreateOrGetBySubject(subject, email string, name, avatarURL *string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO users (auth_subject, email, name, avatar_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (auth_subject) DO UPDATE
		SET email = EXCLUDED.email,
			name = COALESCE(users.name, EXCLUDED.name),
			avatar_url = COALESCE(EXCLUDED.avatar_url, users.avatar_url),
			updated_at = NOW()
		RETURNING `+userColumns,
		subject, email, stringPtrToPgText(name), stringPtrToPgText(avatarURL),
	)
	return scanUser(row)
}

// Helper functions

func scanUserOrNotFound(row pgx.Row) (*domain.User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u         domain.User
		id        pgtype.UUID
		name      pgtype.Text
		avatarURL pgtype.Text
	)
	if err := row.Scan(&id, &u.AuthSubject, &u.Email, &name, &avatarURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.ID = uuid.UUID(id.Bytes)
	u.Name = pgTextToStringPtr(name)
	u.AvatarURL = pgTextToStringPtr(avatarURL)
	return &u, nil
}
