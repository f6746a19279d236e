package query

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	bookdomain "github.com/tair/library-service/internal/book/domain"
	bookrepository "github.com/tair/library-service/internal/book/repository"
	"github.com/tair/library-service/internal/borrow/domain"
	"github.com/tair/library-service/internal/borrow/repository"
)

func setupRepos(t *testing.T) (*repository.GormBorrowRepository, *bookrepository.GormBookRepository, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}
	if err := db.AutoMigrate(&bookdomain.Book{}, &domain.BorrowRecord{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return repository.NewGormBorrowRepository(db), bookrepository.NewGormBookRepository(db), db
}

func seedBook(t *testing.T, db *gorm.DB, quantity int) *bookdomain.Book {
	book := &bookdomain.Book{
		Title:    "Designing Data-Intensive Applications",
		Author:   "Martin Kleppmann",
		ISBN:     uuid.NewString(),
		Quantity: quantity,
	}
	if err := db.Create(book).Error; err != nil {
		t.Fatalf("failed to seed book: %v", err)
	}
	return book
}

func seedRecord(t *testing.T, repo *repository.GormBorrowRepository, userID, bookID uint) *domain.BorrowRecord {
	record := &domain.BorrowRecord{
		RecordUID:         uuid.NewString(),
		UserID:            userID,
		BookID:            bookID,
		Status:            domain.StatusPendingBorrow,
		BorrowRequestDate: time.Now(),
	}
	if err := repo.CreatePending(record); err != nil {
		t.Fatalf("failed to seed record: %v", err)
	}
	return record
}

var (
	student = domain.Actor{UserID: 1, Role: domain.RoleStudent}
	admin   = domain.Actor{UserID: 9, Role: domain.RoleAdmin}
)

func TestGetRecordOwnerAndAdmin(t *testing.T) {
	repo, _, db := setupRepos(t)
	book := seedBook(t, db, 1)
	record := seedRecord(t, repo, 1, book.ID)
	handler := NewGetRecordHandler(repo)

	found, err := handler.Handle(GetRecordQuery{Actor: student, RecordID: record.ID})
	assert.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)

	found, err = handler.Handle(GetRecordQuery{Actor: admin, RecordID: record.ID})
	assert.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)

	// A different student gets an authorization error, not a 404
	_, err = handler.Handle(GetRecordQuery{Actor: domain.Actor{UserID: 2, Role: domain.RoleStudent}, RecordID: record.ID})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = handler.Handle(GetRecordQuery{Actor: admin, RecordID: 999})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListByUserAccess(t *testing.T) {
	repo, _, db := setupRepos(t)
	first := seedBook(t, db, 1)
	second := seedBook(t, db, 1)
	seedRecord(t, repo, 1, first.ID)
	seedRecord(t, repo, 1, second.ID)
	seedRecord(t, repo, 2, first.ID)
	handler := NewListByUserHandler(repo)

	records, err := handler.Handle(ListByUserQuery{Actor: student, UserID: 1})
	assert.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = handler.Handle(ListByUserQuery{Actor: admin, UserID: 2})
	assert.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = handler.Handle(ListByUserQuery{Actor: student, UserID: 2})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestListAllAdminOnly(t *testing.T) {
	repo, _, db := setupRepos(t)
	book := seedBook(t, db, 2)
	seedRecord(t, repo, 1, book.ID)
	seedRecord(t, repo, 2, book.ID)
	handler := NewListAllHandler(repo)

	_, err := handler.Handle(ListAllQuery{Actor: student})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	records, err := handler.Handle(ListAllQuery{Actor: admin})
	assert.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestListAllStatusFilter(t *testing.T) {
	repo, _, db := setupRepos(t)
	book := seedBook(t, db, 2)
	out := seedRecord(t, repo, 1, book.ID)
	seedRecord(t, repo, 2, book.ID)
	_, err := repo.ApproveBorrow(out.ID, time.Now())
	assert.NoError(t, err)

	handler := NewListAllHandler(repo)

	// The loans-out list
	records, err := handler.Handle(ListAllQuery{Actor: admin, Status: domain.StatusBorrowed})
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, out.ID, records[0].ID)

	records, err = handler.Handle(ListAllQuery{Actor: admin, Status: domain.StatusPendingBorrow})
	assert.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = handler.Handle(ListAllQuery{Actor: admin, Status: "LOST"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListPendingQueues(t *testing.T) {
	repo, _, db := setupRepos(t)
	book := seedBook(t, db, 2)
	waiting := seedRecord(t, repo, 1, book.ID)
	moving := seedRecord(t, repo, 2, book.ID)
	_, err := repo.ApproveBorrow(moving.ID, time.Now())
	assert.NoError(t, err)
	_, err = repo.RequestReturn(moving.ID, time.Now())
	assert.NoError(t, err)

	borrows := NewListPendingBorrowsHandler(repo)
	returns := NewListPendingReturnsHandler(repo)

	_, err = borrows.Handle(ListPendingQuery{Actor: student})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	queue, err := borrows.Handle(ListPendingQuery{Actor: admin})
	assert.NoError(t, err)
	assert.Len(t, queue, 1)
	assert.Equal(t, waiting.ID, queue[0].ID)

	queue, err = returns.Handle(ListPendingQuery{Actor: admin})
	assert.NoError(t, err)
	assert.Len(t, queue, 1)
	assert.Equal(t, moving.ID, queue[0].ID)
}

func TestCheckAvailability(t *testing.T) {
	records, books, db := setupRepos(t)
	book := seedBook(t, db, 1)
	handler := NewCheckAvailabilityHandler(records, books)

	avail, err := handler.Handle(CheckAvailabilityQuery{UserID: 1, BookID: book.ID})
	assert.NoError(t, err)
	assert.True(t, avail.Borrowable)
	assert.False(t, avail.HasActiveClaim)
	assert.Equal(t, 1, avail.Quantity)

	// An active claim blocks this user even with stock on the shelf
	record := seedRecord(t, records, 1, book.ID)
	avail, err = handler.Handle(CheckAvailabilityQuery{UserID: 1, BookID: book.ID})
	assert.NoError(t, err)
	assert.False(t, avail.Borrowable)
	assert.True(t, avail.HasActiveClaim)
	assert.Equal(t, domain.StatusPendingBorrow, avail.ActiveStatus)

	// Another user is unaffected by that claim
	avail, err = handler.Handle(CheckAvailabilityQuery{UserID: 2, BookID: book.ID})
	assert.NoError(t, err)
	assert.True(t, avail.Borrowable)

	// Once the copy is out, stock blocks everyone
	_, err = records.ApproveBorrow(record.ID, time.Now())
	assert.NoError(t, err)
	avail, err = handler.Handle(CheckAvailabilityQuery{UserID: 2, BookID: book.ID})
	assert.NoError(t, err)
	assert.False(t, avail.Borrowable)
	assert.False(t, avail.HasActiveClaim)
	assert.Equal(t, 0, avail.Quantity)
}

func TestCheckAvailabilityUnknownBook(t *testing.T) {
	records, books, _ := setupRepos(t)
	handler := NewCheckAvailabilityHandler(records, books)

	_, err := handler.Handle(CheckAvailabilityQuery{UserID: 1, BookID: 404})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = handler.Handle(CheckAvailabilityQuery{UserID: 0, BookID: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
