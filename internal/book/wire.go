//go:build wireinject
// +build wireinject

package book

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/library-service/internal/book/delivery/http"
	"github.com/tair/library-service/internal/book/domain"
	"github.com/tair/library-service/internal/book/repository"
)

// ProvideBookRepository provides the catalog repository
func ProvideBookRepository(db *gorm.DB) domain.BookRepository {
	return repository.NewGormBookRepository(db)
}

var RepositorySet = wire.NewSet(
	ProvideBookRepository,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, guard domain.BorrowGuard) (*http.BookHandler, error) {
	wire.Build(
		RepositorySet,
		http.NewBookHandler,
	)
	return nil, nil
}
