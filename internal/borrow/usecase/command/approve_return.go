package command

import (
	"fmt"
	"time"

	"github.com/tair/library-service/internal/borrow/domain"
)

// ApproveReturnCommand represents the command to approve a pending return
type ApproveReturnCommand struct {
	Actor    domain.Actor
	RecordID uint
}

// ApproveReturnHandler handles return approval command
type ApproveReturnHandler struct {
	repo domain.BorrowRecordRepository
}

// NewApproveReturnHandler creates a new approve return handler
func NewApproveReturnHandler(repo domain.BorrowRecordRepository) *ApproveReturnHandler {
	return &ApproveReturnHandler{repo: repo}
}

// Handle executes the approve return command. The release and the status
// flip to RETURNED are one atomic unit; the return date is set here.
func (h *ApproveReturnHandler) Handle(cmd ApproveReturnCommand) (*domain.BorrowRecord, error) {
	if cmd.RecordID == 0 {
		return nil, fmt.Errorf("%w: record_id is required", domain.ErrValidation)
	}
	if !cmd.Actor.IsAdmin() {
		return nil, fmt.Errorf("%w: approval is admin-only", domain.ErrUnauthorized)
	}

	return h.repo.ApproveReturn(cmd.RecordID, time.Now())
}
