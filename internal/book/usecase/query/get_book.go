package query

import (
	"fmt"

	"github.com/tair/library-service/internal/book/domain"
)

// GetBookQuery represents the query to get a book by ID
type GetBookQuery struct {
	ID uint
}

// GetBookHandler handles get book query
type GetBookHandler struct {
	repo domain.BookRepository
}

// NewGetBookHandler creates a new get book handler
func NewGetBookHandler(repo domain.BookRepository) *GetBookHandler {
	return &GetBookHandler{repo: repo}
}

// Handle executes the get book query
func (h *GetBookHandler) Handle(q GetBookQuery) (*domain.Book, error) {
	if q.ID == 0 {
		return nil, fmt.Errorf("%w: invalid book id", domain.ErrValidation)
	}

	return h.repo.FindByID(q.ID)
}
