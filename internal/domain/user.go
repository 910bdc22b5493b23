package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the local record of an identity issued by the external auth provider
type User struct {
	ID          uuid.UUID `json:"id"`
	AuthSubject string    `json:"authSubject"`
	Email       string    `json:"email"`
	Name        *string   `json:"name"`
	AvatarURL   *string   `json:"avatarUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type UserRepository interface {
	GetByID(id uuid.UUID) (*User, error)
	GetBySubject(subject string) (*User, error)
	UpdateName(subject string, name string) (*User, error)
	CreateOrGetBySubject(subject, email string, name, avatarURL *string) (*User, error)
}
