package command

import (
	"fmt"
	"time"

	"github.com/tair/library-service/internal/book/domain"
)

// CreateBookCommand represents the command to add a book to the catalog
type CreateBookCommand struct {
	Title    string
	Author   string
	ISBN     string
	Category string
	Quantity int
}

// CreateBookHandler handles book creation command
type CreateBookHandler struct {
	repo domain.BookRepository
}

// NewCreateBookHandler creates a new create book handler
func NewCreateBookHandler(repo domain.BookRepository) *CreateBookHandler {
	return &CreateBookHandler{repo: repo}
}

// Handle executes the create book command
func (h *CreateBookHandler) Handle(cmd CreateBookCommand) (*domain.Book, error) {
	if cmd.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if cmd.Author == "" {
		return nil, fmt.Errorf("%w: author is required", domain.ErrValidation)
	}
	if cmd.ISBN == "" {
		return nil, fmt.Errorf("%w: isbn is required", domain.ErrValidation)
	}
	if cmd.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative", domain.ErrValidation)
	}

	if existing, _ := h.repo.FindByISBN(cmd.ISBN); existing != nil {
		return nil, domain.ErrDuplicateISBN
	}

	book := &domain.Book{
		Title:     cmd.Title,
		Author:    cmd.Author,
		ISBN:      cmd.ISBN,
		Category:  cmd.Category,
		Quantity:  cmd.Quantity,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := h.repo.Create(book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	return book, nil
}
