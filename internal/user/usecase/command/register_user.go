package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/tair/library-service/internal/user/domain"
	"github.com/tair/library-service/pkg/auth"
)

// RegisterUserCommand represents the command to register a new user
type RegisterUserCommand struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     string // Optional, defaults to "student"
}

// RegisterUserHandler handles user registration command
type RegisterUserHandler struct {
	repo domain.UserRepository
}

// NewRegisterUserHandler creates a new register user handler
func NewRegisterUserHandler(repo domain.UserRepository) *RegisterUserHandler {
	return &RegisterUserHandler{repo: repo}
}

// Handle executes the register user command
func (h *RegisterUserHandler) Handle(cmd RegisterUserCommand) (*domain.User, error) {
	// Validation
	if cmd.Username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if cmd.Email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if cmd.Password == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrValidation)
	}
	if len(cmd.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}
	if cmd.FullName == "" {
		return nil, fmt.Errorf("%w: full name is required", domain.ErrValidation)
	}

	// Check if user already exists
	if existing, err := h.repo.FindByUsername(cmd.Username); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: username %q", domain.ErrDuplicate, cmd.Username)
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing, err := h.repo.FindByEmail(cmd.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email %q", domain.ErrDuplicate, cmd.Email)
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	// Hash password
	hashedPassword, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Set default role if not provided
	role := cmd.Role
	if role == "" {
		role = domain.RoleStudent
	}
	// Validate role
	if role != domain.RoleStudent && role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: invalid role %q", domain.ErrValidation, role)
	}

	user := &domain.User{
		Username:  cmd.Username,
		Email:     cmd.Email,
		Password:  hashedPassword,
		FullName:  cmd.FullName,
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := h.repo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}
