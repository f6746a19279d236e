package query

import (
	"fmt"

	"github.com/tair/library-service/internal/book/domain"
)

// ListBooksQuery represents the query to list the catalog
type ListBooksQuery struct {
	Category string
	Limit    int
	Offset   int
}

// ListBooksHandler handles list books query
type ListBooksHandler struct {
	repo domain.BookRepository
}

// NewListBooksHandler creates a new list books handler
func NewListBooksHandler(repo domain.BookRepository) *ListBooksHandler {
	return &ListBooksHandler{repo: repo}
}

// Handle executes the list books query
func (h *ListBooksHandler) Handle(q ListBooksQuery) ([]domain.Book, error) {
	if q.Limit == 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}

	var (
		books []domain.Book
		err   error
	)
	if q.Category != "" {
		books, err = h.repo.FindByCategory(q.Category, q.Limit, q.Offset)
	} else {
		books, err = h.repo.FindAll(q.Limit, q.Offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	return books, nil
}
