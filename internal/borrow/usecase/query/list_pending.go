package query

import (
	"fmt"

	"github.com/tair/library-service/internal/borrow/domain"
)

// ListPendingQuery represents the admin work-queue query for records
// awaiting a decision, in either the borrow or the return phase
type ListPendingQuery struct {
	Actor  domain.Actor
	Limit  int
	Offset int
}

// ListPendingBorrowsHandler lists records in PENDING_BORROW
type ListPendingBorrowsHandler struct {
	repo domain.BorrowRecordRepository
}

// NewListPendingBorrowsHandler creates a new pending borrows handler
func NewListPendingBorrowsHandler(repo domain.BorrowRecordRepository) *ListPendingBorrowsHandler {
	return &ListPendingBorrowsHandler{repo: repo}
}

// Handle executes the pending borrows query
func (h *ListPendingBorrowsHandler) Handle(q ListPendingQuery) ([]domain.BorrowRecord, error) {
	return listPending(h.repo, domain.StatusPendingBorrow, q)
}

// ListPendingReturnsHandler lists records in PENDING_RETURN
type ListPendingReturnsHandler struct {
	repo domain.BorrowRecordRepository
}

// NewListPendingReturnsHandler creates a new pending returns handler
func NewListPendingReturnsHandler(repo domain.BorrowRecordRepository) *ListPendingReturnsHandler {
	return &ListPendingReturnsHandler{repo: repo}
}

// Handle executes the pending returns query
func (h *ListPendingReturnsHandler) Handle(q ListPendingQuery) ([]domain.BorrowRecord, error) {
	return listPending(h.repo, domain.StatusPendingReturn, q)
}

func listPending(repo domain.BorrowRecordRepository, status string, q ListPendingQuery) ([]domain.BorrowRecord, error) {
	if !q.Actor.IsAdmin() {
		return nil, fmt.Errorf("%w: pending queues are admin-only", domain.ErrUnauthorized)
	}

	if q.Limit == 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}

	records, err := repo.FindByStatus(status, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending records: %w", err)
	}

	return records, nil
}
