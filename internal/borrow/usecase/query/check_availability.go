package query

import (
	"errors"
	"fmt"

	bookdomain "github.com/tair/library-service/internal/book/domain"
	"github.com/tair/library-service/internal/borrow/domain"
)

// CheckAvailabilityQuery asks whether a specific user can borrow a
// specific book right now
type CheckAvailabilityQuery struct {
	UserID uint
	BookID uint
}

// Availability is the personalized "can I borrow this" projection
type Availability struct {
	BookID         uint   `json:"book_id"`
	UserID         uint   `json:"user_id"`
	Quantity       int    `json:"quantity"`
	ActiveStatus   string `json:"active_status,omitempty"`
	HasActiveClaim bool   `json:"has_active_claim"`
	Borrowable     bool   `json:"borrowable"`
}

// CheckAvailabilityHandler handles availability query
type CheckAvailabilityHandler struct {
	records domain.BorrowRecordRepository
	books   bookdomain.BookRepository
}

// NewCheckAvailabilityHandler creates a new availability handler
func NewCheckAvailabilityHandler(records domain.BorrowRecordRepository, books bookdomain.BookRepository) *CheckAvailabilityHandler {
	return &CheckAvailabilityHandler{records: records, books: books}
}

// Handle executes the availability query. Borrowable means the book is
// in stock, not soft-deleted, and this user holds no active claim on it.
func (h *CheckAvailabilityHandler) Handle(q CheckAvailabilityQuery) (*Availability, error) {
	if q.UserID == 0 || q.BookID == 0 {
		return nil, fmt.Errorf("%w: user_id and book_id are required", domain.ErrValidation)
	}

	book, err := h.books.FindByID(q.BookID)
	if err != nil {
		if errors.Is(err, bookdomain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find book: %w", err)
	}

	result := &Availability{
		BookID:   q.BookID,
		UserID:   q.UserID,
		Quantity: book.Quantity,
	}

	active, err := h.records.FindActive(q.UserID, q.BookID)
	switch {
	case err == nil:
		result.HasActiveClaim = true
		result.ActiveStatus = active.Status
	case errors.Is(err, domain.ErrNotFound):
		// no outstanding claim
	default:
		return nil, fmt.Errorf("failed to check active claim: %w", err)
	}

	result.Borrowable = book.IsAvailable() && !result.HasActiveClaim
	return result, nil
}
