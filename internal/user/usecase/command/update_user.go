package command

import (
	"fmt"
	"time"

	"github.com/tair/library-service/internal/user/domain"
	"github.com/tair/library-service/pkg/auth"
)

// UpdateUserCommand represents the command to update a user's profile
type UpdateUserCommand struct {
	ID       uint
	Email    string
	FullName string
	Password string // Optional, re-hashed when provided
}

// UpdateUserHandler handles user update command
type UpdateUserHandler struct {
	repo domain.UserRepository
}

// NewUpdateUserHandler creates a new update user handler
func NewUpdateUserHandler(repo domain.UserRepository) *UpdateUserHandler {
	return &UpdateUserHandler{repo: repo}
}

// Handle executes the update user command
func (h *UpdateUserHandler) Handle(cmd UpdateUserCommand) (*domain.User, error) {
	// Validation
	if cmd.ID == 0 {
		return nil, fmt.Errorf("%w: invalid user id", domain.ErrValidation)
	}
	if cmd.Email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if cmd.FullName == "" {
		return nil, fmt.Errorf("%w: full name is required", domain.ErrValidation)
	}

	// Check if user exists
	user, err := h.repo.FindByID(cmd.ID)
	if err != nil {
		return nil, err
	}

	// Update fields
	user.Email = cmd.Email
	user.FullName = cmd.FullName
	if cmd.Password != "" {
		if len(cmd.Password) < 6 {
			return nil, fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
		}
		hashed, err := auth.HashPassword(cmd.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hashed
	}
	user.UpdatedAt = time.Now()

	if err := h.repo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}
