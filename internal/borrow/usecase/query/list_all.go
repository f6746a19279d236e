package query

import (
	"fmt"

	"github.com/tair/library-service/internal/borrow/domain"
)

// ListAllQuery represents the admin query for every borrow record,
// optionally narrowed to one status (e.g. BORROWED for the loans-out list)
type ListAllQuery struct {
	Actor  domain.Actor
	Status string
	Limit  int
	Offset int
}

var knownStatuses = map[string]bool{
	domain.StatusPendingBorrow:  true,
	domain.StatusBorrowed:       true,
	domain.StatusPendingReturn:  true,
	domain.StatusReturned:       true,
	domain.StatusBorrowRejected: true,
	domain.StatusReturnRejected: true,
}

// ListAllHandler handles list all records query
type ListAllHandler struct {
	repo domain.BorrowRecordRepository
}

// NewListAllHandler creates a new list all handler
func NewListAllHandler(repo domain.BorrowRecordRepository) *ListAllHandler {
	return &ListAllHandler{repo: repo}
}

// Handle executes the list all query
func (h *ListAllHandler) Handle(q ListAllQuery) ([]domain.BorrowRecord, error) {
	if !q.Actor.IsAdmin() {
		return nil, fmt.Errorf("%w: listing all records is admin-only", domain.ErrUnauthorized)
	}

	if q.Limit == 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}

	var (
		records []domain.BorrowRecord
		err     error
	)
	if q.Status != "" {
		if !knownStatuses[q.Status] {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, q.Status)
		}
		records, err = h.repo.FindByStatus(q.Status, q.Limit, q.Offset)
	} else {
		records, err = h.repo.FindAll(q.Limit, q.Offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	return records, nil
}
