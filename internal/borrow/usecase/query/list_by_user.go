package query

import (
	"fmt"

	"github.com/tair/library-service/internal/borrow/domain"
)

// ListByUserQuery represents the query for a user's borrow history,
// newest request first
type ListByUserQuery struct {
	Actor  domain.Actor
	UserID uint
	Limit  int
	Offset int
}

// ListByUserHandler handles per-user history query
type ListByUserHandler struct {
	repo domain.BorrowRecordRepository
}

// NewListByUserHandler creates a new list by user handler
func NewListByUserHandler(repo domain.BorrowRecordRepository) *ListByUserHandler {
	return &ListByUserHandler{repo: repo}
}

// Handle executes the list by user query
func (h *ListByUserHandler) Handle(q ListByUserQuery) ([]domain.BorrowRecord, error) {
	if q.UserID == 0 {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrValidation)
	}

	if !q.Actor.IsAdmin() && q.Actor.UserID != q.UserID {
		return nil, fmt.Errorf("%w: history belongs to another user", domain.ErrUnauthorized)
	}

	if q.Limit == 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}

	records, err := h.repo.FindByUserID(q.UserID, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list user records: %w", err)
	}

	return records, nil
}
