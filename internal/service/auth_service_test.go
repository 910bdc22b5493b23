package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/testutil"
)

func TestAuthenticateUser_NewUser(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	workspaceRepo := testutil.NewMockWorkspaceRepository()
	service := NewAuthService(userRepo, workspaceRepo)

	subject := "auth0|12345"
	email := "test@example.com"
	name := "Test User"

	result, err := service.AuthenticateUser(subject, email, &name, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !result.IsNewUser {
		t.Error("Expected IsNewUser to be true for new user")
	}

	if result.User == nil {
		t.Fatal("Expected user, got nil")
	}

	if result.User.AuthSubject != subject {
		t.Errorf("Expected subject %s, got %s", subject, result.User.AuthSubject)
	}

	if result.User.Email != email {
		t.Errorf("Expected email %s, got %s", email, result.User.Email)
	}

	if result.Workspace == nil {
		t.Fatal("Expected workspace, got nil")
	}

	if result.Workspace.Name != DefaultWorkspaceName {
		t.Errorf("Expected workspace name %q, got %s", DefaultWorkspaceName, result.Workspace.Name)
	}

	if result.Workspace.UserID != result.User.ID {
		t.Errorf("Expected workspace owned by %s, got %s", result.User.ID, result.Workspace.UserID)
	}
}

func TestAuthenticateUser_ExistingUser(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	workspaceRepo := testutil.NewMockWorkspaceRepository()
	service := NewAuthService(userRepo, workspaceRepo)

	subject := "auth0|existing"
	name := "Existing User"
	existingUser := &domain.User{
		ID:          uuid.New(),
		AuthSubject: subject,
		Email:       "old@example.com",
		Name:        &name,
	}
	userRepo.AddUser(existingUser)
	workspaceRepo.AddWorkspace(&domain.Workspace{ID: 4, UserID: existingUser.ID, Name: "My Workspace"}, subject)

	result, err := service.AuthenticateUser(subject, "new@example.com", &name, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.IsNewUser {
		t.Error("Expected IsNewUser to be false for existing user")
	}

	if result.Workspace.ID != 4 {
		t.Errorf("Expected existing workspace 4, got %d", result.Workspace.ID)
	}

	if result.User.Email != "new@example.com" {
		t.Errorf("Expected email to be refreshed, got %s", result.User.Email)
	}

	if len(workspaceRepo.Workspaces) != 1 {
		t.Errorf("Expected no new workspace, got %d", len(workspaceRepo.Workspaces))
	}
}

func TestAuthenticateUser_WorkspaceLookupFails(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	workspaceRepo := testutil.NewMockWorkspaceRepository()
	lookupErr := errors.New("connection reset")
	workspaceRepo.GetByUserIDFn = func(userID uuid.UUID) (*domain.Workspace, error) {
		return nil, lookupErr
	}
	service := NewAuthService(userRepo, workspaceRepo)

	_, err := service.AuthenticateUser("auth0|broken", "broken@example.com", nil, nil)
	if !errors.Is(err, lookupErr) {
		t.Errorf("Expected lookup error, got %v", err)
	}

	if len(workspaceRepo.Workspaces) != 0 {
		t.Error("Expected no workspace to be created")
	}
}

func TestGetUserByID(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	service := NewAuthService(userRepo, testutil.NewMockWorkspaceRepository())

	userID := uuid.New()
	userRepo.AddUser(&domain.User{ID: userID, AuthSubject: "auth0|test", Email: "test@example.com"})

	found, err := service.GetUserByID(userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if found.ID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, found.ID)
	}

	_, err = service.GetUserByID(uuid.New())
	if err != domain.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestGetUserBySubject(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	service := NewAuthService(userRepo, testutil.NewMockWorkspaceRepository())

	subject := "auth0|findme"
	userRepo.AddUser(&domain.User{ID: uuid.New(), AuthSubject: subject, Email: "findme@example.com"})

	found, err := service.GetUserBySubject(subject)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if found.AuthSubject != subject {
		t.Errorf("Expected subject %s, got %s", subject, found.AuthSubject)
	}

	_, err = service.GetUserBySubject("auth0|notexist")
	if err != domain.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestGetWorkspaceBySubject(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	workspaceRepo := testutil.NewMockWorkspaceRepository()
	service := NewAuthService(userRepo, workspaceRepo)

	subject := "auth0|workspace-test"
	user := &domain.User{ID: uuid.New(), AuthSubject: subject, Email: "workspace@example.com"}
	userRepo.AddUser(user)
	workspaceRepo.AddWorkspace(&domain.Workspace{ID: 9, UserID: user.ID, Name: "Test Workspace"}, subject)

	t.Run("returns workspace for known subject", func(t *testing.T) {
		found, err := service.GetWorkspaceBySubject(subject)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if found.ID != 9 {
			t.Errorf("Expected workspace ID 9, got %d", found.ID)
		}
	})

	t.Run("returns workspace id for websocket lookup", func(t *testing.T) {
		id, err := service.GetWorkspaceIDBySubject(subject)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if id != 9 {
			t.Errorf("Expected workspace ID 9, got %d", id)
		}
	})

	t.Run("returns error for unknown subject", func(t *testing.T) {
		_, err := service.GetWorkspaceBySubject("auth0|unknown")
		if err != domain.ErrWorkspaceNotFound {
			t.Errorf("Expected ErrWorkspaceNotFound, got %v", err)
		}
		_, err = service.GetWorkspaceIDBySubject("auth0|unknown")
		if err != domain.ErrWorkspaceNotFound {
			t.Errorf("Expected ErrWorkspaceNotFound, got %v", err)
		}
	})
}
