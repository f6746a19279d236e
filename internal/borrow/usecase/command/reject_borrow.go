package command

import (
	"fmt"

	"github.com/tair/library-service/internal/borrow/domain"
)

// RejectBorrowCommand represents the command to reject a pending borrow
type RejectBorrowCommand struct {
	Actor    domain.Actor
	RecordID uint
	Reason   string
}

// RejectBorrowHandler handles borrow rejection command
type RejectBorrowHandler struct {
	repo domain.BorrowRecordRepository
}

// NewRejectBorrowHandler creates a new reject borrow handler
func NewRejectBorrowHandler(repo domain.BorrowRecordRepository) *RejectBorrowHandler {
	return &RejectBorrowHandler{repo: repo}
}

// Handle executes the reject borrow command. BORROW_REJECTED is terminal:
// the claim dissolves since no book was ever handed over.
func (h *RejectBorrowHandler) Handle(cmd RejectBorrowCommand) (*domain.BorrowRecord, error) {
	if cmd.RecordID == 0 {
		return nil, fmt.Errorf("%w: record_id is required", domain.ErrValidation)
	}
	if cmd.Reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", domain.ErrValidation)
	}
	if !cmd.Actor.IsAdmin() {
		return nil, fmt.Errorf("%w: rejection is admin-only", domain.ErrUnauthorized)
	}

	return h.repo.RejectBorrow(cmd.RecordID, cmd.Reason)
}
