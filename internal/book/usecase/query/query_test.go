package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tair/library-service/internal/book/domain"
	"github.com/tair/library-service/internal/book/repository"
)

func setupRepo(t *testing.T) (*repository.GormBookRepository, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.Book{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return repository.NewGormBookRepository(db), db
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	books := []domain.Book{
		{Title: "SICP", Author: "Abelson & Sussman", ISBN: "978-0262510875", Category: "cs", Quantity: 2},
		{Title: "TAOCP Vol. 1", Author: "Donald Knuth", ISBN: "978-0201896831", Category: "cs", Quantity: 0},
		{Title: "Godel, Escher, Bach", Author: "Douglas Hofstadter", ISBN: "978-0465026562", Category: "philosophy", Quantity: 1},
	}
	for i := range books {
		if err := db.Create(&books[i]).Error; err != nil {
			t.Fatalf("failed to seed catalog: %v", err)
		}
	}
}

func TestGetBook(t *testing.T) {
	repo, db := setupRepo(t)
	seedCatalog(t, db)
	handler := NewGetBookHandler(repo)

	book, err := handler.Handle(GetBookQuery{ID: 1})
	assert.NoError(t, err)
	assert.Equal(t, "SICP", book.Title)

	_, err = handler.Handle(GetBookQuery{ID: 99})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = handler.Handle(GetBookQuery{ID: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListBooks(t *testing.T) {
	repo, db := setupRepo(t)
	seedCatalog(t, db)
	handler := NewListBooksHandler(repo)

	books, err := handler.Handle(ListBooksQuery{})
	assert.NoError(t, err)
	assert.Len(t, books, 3)

	books, err = handler.Handle(ListBooksQuery{Category: "cs"})
	assert.NoError(t, err)
	assert.Len(t, books, 2)

	books, err = handler.Handle(ListBooksQuery{Limit: 2})
	assert.NoError(t, err)
	assert.Len(t, books, 2)

	books, err = handler.Handle(ListBooksQuery{Limit: 2, Offset: 2})
	assert.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestGetStats(t *testing.T) {
	repo, db := setupRepo(t)
	seedCatalog(t, db)
	handler := NewGetStatsHandler(repo)

	stats, err := handler.Handle(GetStatsQuery{})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalBooks)
	// One title has no free copies
	assert.Equal(t, int64(2), stats.AvailableBooks)
}
