package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidRole = errors.New("role must be user or admin")
	ErrUserHasTasks = errors.New("user is referenced by existing tasks")
)

// UserService handles admin-side user management.
type UserService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, taskRepo repository.TaskRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		taskRepo: taskRepo,
	}
}

// ListUsers lists users with pagination.
func (s *UserService) ListUsers(page, pageSize int) ([]models.User, int64, error) {
	users, total, err := s.userRepo.List(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// AdminUpdateUserInput holds the fields an administrator may change.
type AdminUpdateUserInput struct {
	Name  *string
	Email *string
	Role  *models.UserRole
}

// UpdateUser applies an admin edit to a user record.
func (s *UserService) UpdateUser(id uint64, input AdminUpdateUserInput) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrNameRequired
		}
		user.Name = *input.Name
	}
	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if email == "" {
			return nil, ErrEmailRequired
		}
		if email != user.Email {
			if _, err := s.userRepo.FindByEmail(email); err == nil {
				return nil, ErrEmailTaken
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
		}
		user.Email = email
	}
	if input.Role != nil {
		if *input.Role != models.RoleUser && *input.Role != models.RoleAdmin {
			return nil, ErrInvalidRole
		}
		user.Role = *input.Role
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes a user unless tasks still reference them as creator or
// assignee.
func (s *UserService) DeleteUser(id uint64) error {
	user, err := s.GetUser(id)
	if err != nil {
		return err
	}

	count, err := s.taskRepo.CountByUserID(user.ID)
	if err != nil {
		return fmt.Errorf("failed to count user tasks: %w", err)
	}
	if count > 0 {
		return ErrUserHasTasks
	}

	if err := s.userRepo.Delete(user.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}
