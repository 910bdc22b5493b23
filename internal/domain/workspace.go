package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workspace owns every account, transaction, budget and goal of one user
type Workspace struct {
	ID        int32     `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type WorkspaceRepository interface {
	GetByID(id int32) (*Workspace, error)
	GetByUserID(userID uuid.UUID) (*Workspace, error)
	GetByUserSubject(subject string) (*Workspace, error)
	Create(workspace *Workspace) (*Workspace, error)
}
