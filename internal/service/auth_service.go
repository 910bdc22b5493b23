package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// DefaultWorkspaceName is given to the workspace created on first sign-in
const DefaultWorkspaceName = "Personal"

// AuthService handles authentication-related business logic
type AuthService struct {
	userRepo      domain.UserRepository
	workspaceRepo domain.WorkspaceRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, workspaceRepo domain.WorkspaceRepository) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		workspaceRepo: workspaceRepo,
	}
}

// AuthResult represents the result of an authentication operation
type AuthResult struct {
	User      *domain.User
	Workspace *domain.Workspace
	IsNewUser bool
}

// AuthenticateUser records the identity behind a verified token.
// First-time users get a default workspace.
func (s *AuthService) AuthenticateUser(subject, email string, name, avatarURL *string) (*AuthResult, error) {
	user, err := s.userRepo.CreateOrGetBySubject(subject, email, name, avatarURL)
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("Failed to create or get user")
		return nil, err
	}

	workspace, err := s.workspaceRepo.GetByUserID(user.ID)
	if err == nil {
		log.Info().Str("user_id", user.ID.String()).Msg("Existing user authenticated")
		return &AuthResult{User: user, Workspace: workspace}, nil
	}
	if !errors.Is(err, domain.ErrWorkspaceNotFound) {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to get workspace")
		return nil, err
	}

	workspace, err = s.workspaceRepo.Create(&domain.Workspace{UserID: user.ID, Name: DefaultWorkspaceName})
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to create default workspace")
		return nil, err
	}
	log.Info().Str("user_id", user.ID.String()).Int32("workspace_id", workspace.ID).Msg("Created new user with default workspace")

	return &AuthResult{User: user, Workspace: workspace, IsNewUser: true}, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(id)
}

// GetUserBySubject retrieves a user by their token subject
func (s *AuthService) GetUserBySubject(subject string) (*domain.User, error) {
	return s.userRepo.GetBySubject(subject)
}

// GetWorkspaceBySubject retrieves the workspace owned by a token subject
func (s *AuthService) GetWorkspaceBySubject(subject string) (*domain.Workspace, error) {
	return s.workspaceRepo.GetByUserSubject(subject)
}

// GetWorkspaceIDBySubject satisfies websocket.WorkspaceLookup
func (s *AuthService) GetWorkspaceIDBySubject(subject string) (int32, error) {
	workspace, err := s.workspaceRepo.GetByUserSubject(subject)
	if err != nil {
		return 0, err
	}
	return workspace.ID, nil
}
