package query

import (
	"fmt"

	"github.com/tair/library-service/internal/user/domain"
)

// ListUsersQuery represents the query to list users with pagination
type ListUsersQuery struct {
	Role   string // Optional role filter
	Limit  int
	Offset int
}

// ListUsersHandler handles list users query
type ListUsersHandler struct {
	repo domain.UserRepository
}

// NewListUsersHandler creates a new list users handler
func NewListUsersHandler(repo domain.UserRepository) *ListUsersHandler {
	return &ListUsersHandler{repo: repo}
}

// Handle executes the list users query
func (h *ListUsersHandler) Handle(query ListUsersQuery) ([]domain.User, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	if query.Role != "" {
		if query.Role != domain.RoleStudent && query.Role != domain.RoleAdmin {
			return nil, fmt.Errorf("%w: invalid role %q", domain.ErrValidation, query.Role)
		}
		users, err := h.repo.FindByRole(query.Role, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		return users, nil
	}

	users, err := h.repo.FindAll(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}
