package command

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tair/library-service/internal/borrow/domain"
)

// RequestBorrowCommand represents the command to file a borrow request.
// UserID is the borrower; a student may only file for themselves, an
// admin may file on behalf of a student.
type RequestBorrowCommand struct {
	Actor  domain.Actor
	UserID uint
	BookID uint
}

// RequestBorrowHandler handles borrow request command
type RequestBorrowHandler struct {
	repo      domain.BorrowRecordRepository
	directory domain.UserDirectory
}

// NewRequestBorrowHandler creates a new request borrow handler
func NewRequestBorrowHandler(repo domain.BorrowRecordRepository, directory domain.UserDirectory) *RequestBorrowHandler {
	return &RequestBorrowHandler{repo: repo, directory: directory}
}

// Handle executes the request borrow command. No availability check is
// made here; quantity is re-validated at approval time.
func (h *RequestBorrowHandler) Handle(cmd RequestBorrowCommand) (*domain.BorrowRecord, error) {
	if cmd.UserID == 0 {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrValidation)
	}
	if cmd.BookID == 0 {
		return nil, fmt.Errorf("%w: book_id is required", domain.ErrValidation)
	}

	if cmd.Actor.IsAdmin() {
		// On-behalf-of flow: the selected borrower must be a student
		role, err := h.directory.RoleOf(cmd.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve borrower: %w", err)
		}
		if role != domain.RoleStudent {
			return nil, fmt.Errorf("%w: borrower must be a student", domain.ErrUnauthorized)
		}
	} else if cmd.Actor.UserID != cmd.UserID {
		return nil, fmt.Errorf("%w: students may only request for themselves", domain.ErrUnauthorized)
	}

	record := &domain.BorrowRecord{
		RecordUID:         uuid.NewString(),
		UserID:            cmd.UserID,
		BookID:            cmd.BookID,
		Status:            domain.StatusPendingBorrow,
		BorrowRequestDate: time.Now(),
	}

	if err := h.repo.CreatePending(record); err != nil {
		return nil, err
	}

	return record, nil
}
