package query

import (
	"fmt"

	"github.com/tair/library-service/internal/borrow/domain"
)

// GetRecordQuery represents the query to get a borrow record by ID
type GetRecordQuery struct {
	Actor    domain.Actor
	RecordID uint
}

// GetRecordHandler handles get record query
type GetRecordHandler struct {
	repo domain.BorrowRecordRepository
}

// NewGetRecordHandler creates a new get record handler
func NewGetRecordHandler(repo domain.BorrowRecordRepository) *GetRecordHandler {
	return &GetRecordHandler{repo: repo}
}

// Handle executes the get record query
func (h *GetRecordHandler) Handle(q GetRecordQuery) (*domain.BorrowRecord, error) {
	if q.RecordID == 0 {
		return nil, fmt.Errorf("%w: record_id is required", domain.ErrValidation)
	}

	record, err := h.repo.FindByID(q.RecordID)
	if err != nil {
		return nil, err
	}

	if !q.Actor.IsAdmin() && record.UserID != q.Actor.UserID {
		return nil, fmt.Errorf("%w: record belongs to another user", domain.ErrUnauthorized)
	}

	return record, nil
}
