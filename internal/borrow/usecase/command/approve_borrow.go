package command

import (
	"fmt"
	"time"

	"github.com/tair/library-service/internal/borrow/domain"
)

// ApproveBorrowCommand represents the command to approve a pending borrow
type ApproveBorrowCommand struct {
	Actor    domain.Actor
	RecordID uint
}

// ApproveBorrowHandler handles borrow approval command
type ApproveBorrowHandler struct {
	repo domain.BorrowRecordRepository
}

// NewApproveBorrowHandler creates a new approve borrow handler
func NewApproveBorrowHandler(repo domain.BorrowRecordRepository) *ApproveBorrowHandler {
	return &ApproveBorrowHandler{repo: repo}
}

// Handle executes the approve borrow command. The reserve and the status
// flip are one atomic unit; on ErrOutOfStock the record stays
// PENDING_BORROW for the admin to reject or retry later.
func (h *ApproveBorrowHandler) Handle(cmd ApproveBorrowCommand) (*domain.BorrowRecord, error) {
	if cmd.RecordID == 0 {
		return nil, fmt.Errorf("%w: record_id is required", domain.ErrValidation)
	}
	if !cmd.Actor.IsAdmin() {
		return nil, fmt.Errorf("%w: approval is admin-only", domain.ErrUnauthorized)
	}

	return h.repo.ApproveBorrow(cmd.RecordID, time.Now())
}
