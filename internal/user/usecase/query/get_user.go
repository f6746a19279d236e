package query

import (
	"fmt"

	"github.com/tair/library-service/internal/user/domain"
)

// GetUserQuery represents the query to get a user by ID
type GetUserQuery struct {
	ID uint
}

// GetUserHandler handles get user query
type GetUserHandler struct {
	repo domain.UserRepository
}

// NewGetUserHandler creates a new get user handler
func NewGetUserHandler(repo domain.UserRepository) *GetUserHandler {
	return &GetUserHandler{repo: repo}
}

// Handle executes the get user query
func (h *GetUserHandler) Handle(query GetUserQuery) (*domain.User, error) {
	if query.ID == 0 {
		return nil, fmt.Errorf("%w: invalid user id", domain.ErrValidation)
	}

	user, err := h.repo.FindByID(query.ID)
	if err != nil {
		return nil, err
	}

	return user, nil
}
