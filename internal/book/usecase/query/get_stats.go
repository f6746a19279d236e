package query

import (
	"fmt"

	"github.com/tair/library-service/internal/book/domain"
)

// GetStatsQuery represents the query to get catalog statistics (admin only)
type GetStatsQuery struct{}

// CatalogStats represents catalog statistics
type CatalogStats struct {
	TotalBooks     int64 `json:"total_books"`
	AvailableBooks int64 `json:"available_books"`
}

// GetStatsHandler handles get stats query
type GetStatsHandler struct {
	repo domain.BookRepository
}

// NewGetStatsHandler creates a new get stats handler
func NewGetStatsHandler(repo domain.BookRepository) *GetStatsHandler {
	return &GetStatsHandler{repo: repo}
}

// Handle executes the get stats query
func (h *GetStatsHandler) Handle(q GetStatsQuery) (*CatalogStats, error) {
	total, err := h.repo.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}

	available, err := h.repo.CountAvailable()
	if err != nil {
		return nil, fmt.Errorf("failed to count available books: %w", err)
	}

	return &CatalogStats{
		TotalBooks:     total,
		AvailableBooks: available,
	}, nil
}
