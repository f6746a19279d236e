package command

import (
	"fmt"

	"github.com/tair/library-service/internal/book/domain"
)

// DeleteBookCommand represents the command to soft-delete a book
type DeleteBookCommand struct {
	ID uint
}

// DeleteBookHandler handles book deletion command
type DeleteBookHandler struct {
	repo  domain.BookRepository
	guard domain.BorrowGuard
}

// NewDeleteBookHandler creates a new delete book handler
func NewDeleteBookHandler(repo domain.BookRepository, guard domain.BorrowGuard) *DeleteBookHandler {
	return &DeleteBookHandler{repo: repo, guard: guard}
}

// Handle executes the delete book command. Deletion is refused while any
// active borrow record references the book.
func (h *DeleteBookHandler) Handle(cmd DeleteBookCommand) error {
	if cmd.ID == 0 {
		return fmt.Errorf("%w: invalid book id", domain.ErrValidation)
	}

	active, err := h.guard.CountActiveByBook(cmd.ID)
	if err != nil {
		return fmt.Errorf("failed to check active records: %w", err)
	}
	if active > 0 {
		return domain.ErrActiveRecords
	}

	return h.repo.Delete(cmd.ID)
}
