package service

import (
	"strings"
	"unicode/utf8"

	"github.com/kantong/kantong-backend/internal/domain"
)

// MaxProfileNameLength bounds the display name
const MaxProfileNameLength = 100

// ProfileService handles profile-related business logic
type ProfileService struct {
	userRepo domain.UserRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo domain.UserRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

// GetProfile retrieves a user's profile by token subject
func (s *ProfileService) GetProfile(subject string) (*domain.User, error) {
	return s.userRepo.GetBySubject(subject)
}

// UpdateProfile changes the display name
func (s *ProfileService) UpdateProfile(subject string, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxProfileNameLength {
		return nil, domain.ErrNameTooLong
	}
	return s.userRepo.UpdateName(subject, name)
}
