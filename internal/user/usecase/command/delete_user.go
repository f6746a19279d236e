package command

import (
	"fmt"

	"github.com/tair/library-service/internal/user/domain"
)

// DeleteUserCommand represents the command to delete a user
type DeleteUserCommand struct {
	ID uint
}

// DeleteUserHandler handles user deletion command
type DeleteUserHandler struct {
	repo  domain.UserRepository
	loans domain.LoanGuard
}

// NewDeleteUserHandler creates a new delete user handler
func NewDeleteUserHandler(repo domain.UserRepository, loans domain.LoanGuard) *DeleteUserHandler {
	return &DeleteUserHandler{repo: repo, loans: loans}
}

// Handle executes the delete user command. Deletion is refused while the
// user still holds active borrow records.
func (h *DeleteUserHandler) Handle(cmd DeleteUserCommand) error {
	// Validation
	if cmd.ID == 0 {
		return fmt.Errorf("%w: invalid user id", domain.ErrValidation)
	}

	if h.loans != nil {
		active, err := h.loans.ActiveRecordCount(cmd.ID)
		if err != nil {
			return fmt.Errorf("failed to check active borrow records: %w", err)
		}
		if active > 0 {
			return fmt.Errorf("%w: %d active records", domain.ErrActiveLoans, active)
		}
	}

	if err := h.repo.Delete(cmd.ID); err != nil {
		return err
	}

	return nil
}
