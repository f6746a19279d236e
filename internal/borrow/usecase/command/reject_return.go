package command

import (
	"fmt"

	"github.com/tair/library-service/internal/borrow/domain"
)

// RejectReturnCommand represents the command to reject a pending return
type RejectReturnCommand struct {
	Actor    domain.Actor
	RecordID uint
	Reason   string
}

// RejectReturnHandler handles return rejection command
type RejectReturnHandler struct {
	repo domain.BorrowRecordRepository
}

// NewRejectReturnHandler creates a new reject return handler
func NewRejectReturnHandler(repo domain.BorrowRecordRepository) *RejectReturnHandler {
	return &RejectReturnHandler{repo: repo}
}

// Handle executes the reject return command. RETURN_REJECTED is not
// terminal: the student still holds the book and must eventually bring
// it back, so a retried return request is allowed.
func (h *RejectReturnHandler) Handle(cmd RejectReturnCommand) (*domain.BorrowRecord, error) {
	if cmd.RecordID == 0 {
		return nil, fmt.Errorf("%w: record_id is required", domain.ErrValidation)
	}
	if cmd.Reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", domain.ErrValidation)
	}
	if !cmd.Actor.IsAdmin() {
		return nil, fmt.Errorf("%w: rejection is admin-only", domain.ErrUnauthorized)
	}

	return h.repo.RejectReturn(cmd.RecordID, cmd.Reason)
}
