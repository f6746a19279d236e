package command

import (
	"fmt"
	"time"

	"github.com/tair/library-service/internal/borrow/domain"
)

// RequestReturnCommand represents the command to request a book return
type RequestReturnCommand struct {
	Actor    domain.Actor
	RecordID uint
}

// RequestReturnHandler handles return request command
type RequestReturnHandler struct {
	repo domain.BorrowRecordRepository
}

// NewRequestReturnHandler creates a new request return handler
func NewRequestReturnHandler(repo domain.BorrowRecordRepository) *RequestReturnHandler {
	return &RequestReturnHandler{repo: repo}
}

// Handle executes the request return command. Valid from BORROWED and
// from RETURN_REJECTED, so a rejected return can be retried without
// re-borrowing.
func (h *RequestReturnHandler) Handle(cmd RequestReturnCommand) (*domain.BorrowRecord, error) {
	if cmd.RecordID == 0 {
		return nil, fmt.Errorf("%w: record_id is required", domain.ErrValidation)
	}

	record, err := h.repo.FindByID(cmd.RecordID)
	if err != nil {
		return nil, err
	}

	// Request-side transitions belong to the record's own user
	if record.UserID != cmd.Actor.UserID {
		return nil, fmt.Errorf("%w: only the borrower may request a return", domain.ErrUnauthorized)
	}

	return h.repo.RequestReturn(cmd.RecordID, time.Now())
}
