package service

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/solenne/roadmapper/internal/apperror"
	"github.com/solenne/roadmapper/internal/model"
	"github.com/solenne/roadmapper/internal/repository"
)

// UserService manages accounts and the deletion hook that archives all of a
// user's answer data before the account row disappears.
type UserService interface {
	Register(email, username string) (*model.User, error)
	Get(id string) (*model.User, error)
	TouchLogin(id string) error
	Deactivate(id string) (*model.User, error)
	DeleteAccount(id string) error
}

type userService struct {
	userRepo  repository.UserRepository
	responses ResponseService
}

func NewUserService(userRepo repository.UserRepository, responses ResponseService) UserService {
	return &userService{userRepo: userRepo, responses: responses}
}

func (s *userService) Register(email, username string) (*model.User, error) {
	if email == "" {
		return nil, apperror.Validation("email", "email is required")
	}
	if username == "" {
		return nil, apperror.Validation("username", "username is required")
	}

	user := model.User{
		Email:    email,
		Username: username,
		Role:     model.RoleUser,
		IsActive: true,
	}
	if err := s.userRepo.Create(&user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Str("userID", user.ID).Msg("User registered")
	return &user, nil
}

func (s *userService) Get(id string) (*model.User, error) {
	return s.userRepo.FindByID(id)
}

func (s *userService) TouchLogin(id string) error {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return fmt.Errorf("user %s not found: %w", id, err)
	}
	now := time.Now()
	user.LastLogin = &now
	return s.userRepo.Update(user)
}

func (s *userService) Deactivate(id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("user %s not found: %w", id, err)
	}
	user.IsActive = false
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to deactivate user: %w", err)
	}
	return user, nil
}

// DeleteAccount archives the user's answers into final backups, then removes
// the account row. Roadmaps survive deletion with their user reference
// cleared. The archive step runs before the row delete so a failure there
// aborts the whole operation.
func (s *userService) DeleteAccount(id string) error {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return fmt.Errorf("user %s not found: %w", id, err)
	}

	if err := s.responses.DeleteAllForUser(id); err != nil {
		return fmt.Errorf("failed to archive responses for user %s: %w", id, err)
	}

	if err := s.userRepo.Delete(user.ID); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}

	log.Info().Str("userID", id).Msg("User account deleted")
	return nil
}
