package command

import (
	"fmt"
	"time"

	"github.com/tair/library-service/internal/book/domain"
)

// UpdateBookCommand represents the command to edit catalog metadata.
// Quantity is deliberately absent: copies move only through borrow
// lifecycle approvals.
type UpdateBookCommand struct {
	ID       uint
	Title    string
	Author   string
	Category string
}

// UpdateBookHandler handles book update command
type UpdateBookHandler struct {
	repo domain.BookRepository
}

// NewUpdateBookHandler creates a new update book handler
func NewUpdateBookHandler(repo domain.BookRepository) *UpdateBookHandler {
	return &UpdateBookHandler{repo: repo}
}

// Handle executes the update book command
func (h *UpdateBookHandler) Handle(cmd UpdateBookCommand) (*domain.Book, error) {
	if cmd.ID == 0 {
		return nil, fmt.Errorf("%w: invalid book id", domain.ErrValidation)
	}
	if cmd.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if cmd.Author == "" {
		return nil, fmt.Errorf("%w: author is required", domain.ErrValidation)
	}

	book, err := h.repo.FindByID(cmd.ID)
	if err != nil {
		return nil, err
	}

	book.Title = cmd.Title
	book.Author = cmd.Author
	book.Category = cmd.Category
	book.UpdatedAt = time.Now()

	if err := h.repo.Update(book); err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	return book, nil
}
