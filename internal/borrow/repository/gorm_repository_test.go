package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	bookdomain "github.com/tair/library-service/internal/book/domain"
	"github.com/tair/library-service/internal/borrow/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}
	if err := db.AutoMigrate(&bookdomain.Book{}, &domain.BorrowRecord{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedBook(t *testing.T, db *gorm.DB, quantity int) *bookdomain.Book {
	book := &bookdomain.Book{
		Title:    "The Go Programming Language",
		Author:   "Donovan & Kernighan",
		ISBN:     uuid.NewString(),
		Category: "programming",
		Quantity: quantity,
	}
	if err := db.Create(book).Error; err != nil {
		t.Fatalf("failed to seed book: %v", err)
	}
	return book
}

func pendingRecord(userID, bookID uint) *domain.BorrowRecord {
	return &domain.BorrowRecord{
		RecordUID:         uuid.NewString(),
		UserID:            userID,
		BookID:            bookID,
		Status:            domain.StatusPendingBorrow,
		BorrowRequestDate: time.Now(),
	}
}

func bookQuantity(t *testing.T, db *gorm.DB, id uint) int {
	var book bookdomain.Book
	if err := db.Unscoped().First(&book, id).Error; err != nil {
		t.Fatalf("failed to reload book: %v", err)
	}
	return book.Quantity
}

func TestCreatePending(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBorrowRepository(db)
	book := seedBook(t, db, 2)

	record := pendingRecord(1, book.ID)
	err := repo.CreatePending(record)
	assert.NoError(t, err)
	assert.NotZero(t, record.ID)
	assert.Equal(t, domain.StatusPendingBorrow, record.Status)

	// No reservation happens at request time
	assert.Equal(t, 2, bookQuantity(t, db, book.ID))
}

func TestCreatePendingDuplicateActiveClaim(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBorrowRepository(db)
	book := seedBook(t, db, 5)

	assert.NoError(t, repo.CreatePending(pendingRecord(1, book.ID)))

	err := repo.CreatePending(pendingRecord(1, book.ID))
	assert.ErrorIs(t, err, domain.ErrDuplicateActiveClaim)

	// A different user may still claim the same book
	assert.NoError(t, repo.CreatePending(pendingRecord(2, book.ID)))
}

func TestCreatePendingAfterTerminalRecord(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBorrowRepository(db)
	book := seedBook(t, db, 1)

	first := pendingRecord(1, book.ID)
	assert.NoError(t, repo.CreatePending(first))
	_, err := repo.RejectBorrow(first.ID, "not eligible")
	assert.NoError(t, err)

	// BORROW_REJECTED is terminal, so a fresh claim is allowed
	assert.NoError(t, repo.CreatePending(pendingRecord(1, book.ID)))
}

func TestCreatePendingUnknownBook(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBorrowRepository(db)

	err := repo.CreatePending(pendingRecord(1, 999))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreatePendingDelistedBook(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBorrowRepository(db)
	book := seedBook(t, db, 3)

	assert.NoError(t, db.Delete(&bookdomain.Book{}, book.ID).Error)

	err := repo.CreatePending(pendingRecord(1, book.ID))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApproveBorrow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBorrowRepository(db)
	book := seedBook(t, db, 2)

	record := pendingRecord(1, book.ID)
	assert.NoError(t, repo.CreatePending(record))

	issuedAt := time.Now()
	approved, err := repo.ApproveBorrow(record.ID, issuedAt)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusBorrowed, approved.Status)
	assert.NotNil(t, approved.IssuedDate)

	// Exactly one copy reserved
	assert.Equal(t, 1, bookQuantity(t, db, book.ID))
}

func TestApproveBorrowTwiceReservesOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBorrowRepository(db)
	book := seedBook(t, db, 2)

	record := pendingRecord(1, book.ID)
	assert.NoError(t, repo.CreatePending(record))

	_, err := repo.ApproveBorrow(record.ID, time.Now())
	assert.NoError(t, err)

	_, err = repo.ApproveBorrow(record.ID, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	// The failed second approval must not decrement again
	assert.Equal(t, 1, bookQuantity(t, db, book.ID))
}

func TestApproveBorrowOutOfStock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBorrowRepository(db)
	book := seedBook(t, db, 1)

	first := pendingRecord(1, book.ID)
	second := pendingRecord(2, book.ID)
	assert.NoError(t, repo.CreatePending(first))
	assert.NoError(t, repo.CreatePending(second))

	_, err := repo.ApproveBorrow(first.ID, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 0, bookQuantity(t, db, book.ID))

	_, err = repo.ApproveBorrow(second.ID, time.Now())
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
	assert.Equal(t, 0, bookQuantity(t, db, book.ID))

	// The starved record stays pending so the admin can reject or retry
	reloaded, err := repo.FindByID(second.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusPendingBorrow, reloaded.Status)
	assert.Nil(t, reloaded.IssuedDate)
}

func TestApproveBorrowNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBorrowRepository(db)

	_, err := repo.ApproveBorrow(42, time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRejectBorrow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBorrowRepository(db)
	book := seedBook(t, db, 1)

	record := pendingRecord(1, book.ID)
	assert.NoError(t, repo.CreatePending(record))

	rejected, err := repo.RejectBorrow(record.ID, "card expired")
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusBorrowRejected, rejected.Status)
	assert.Equal(t, "card expired", rejected.RejectionReason)

	// Rejection touches no inventory
	assert.Equal(t, 1, bookQuantity(t, db, book.ID))

	// Terminal: no further transitions
	_, err = repo.ApproveBorrow(record.ID, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	_, err = repo.RejectBorrow(record.ID, "again")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestReturnRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBorrowRepository(db)
	book := seedBook(t, db, 1)

	record := pendingRecord(1, book.ID)
	assert.NoError(t, repo.CreatePending(record))
	_, err := repo.ApproveBorrow(record.ID, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 0, bookQuantity(t, db, book.ID))

	pending, err := repo.RequestReturn(record.ID, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusPendingReturn, pending.Status)
	assert.NotNil(t, pending.ReturnRequestDate)
	// Still out until the admin confirms receipt
	assert.Equal(t, 0, bookQuantity(t, db, book.ID))

	returned, err := repo.ApproveReturn(record.ID, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusReturned, returned.Status)
	assert.NotNil(t, returned.ReturnDate)
	assert.Equal(t, 1, bookQuantity(t, db, book.ID))

	// RETURNED is terminal
	_, err = repo.RequestReturn(record.ID, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestRequestReturnBeforeBorrowed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBorrowRepository(db)
	book := seedBook(t, db, 1)

	record := pendingRecord(1, book.ID)
	assert.NoError(t, repo.CreatePending(record))

	_, err := repo.RequestReturn(record.ID, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestRejectReturnAllowsRetry(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBorrowRepository(db)
	book := seedBook(t, db, 1)

	record := pendingRecord(1, book.ID)
	assert.NoError(t, repo.CreatePending(record))
	_, err := repo.ApproveBorrow(record.ID, time.Now())
	assert.NoError(t, err)
	_, err = repo.RequestReturn(record.ID, time.Now())
	assert.NoError(t, err)

	rejected, err := repo.RejectReturn(record.ID, "book damaged")
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusReturnRejected, rejected.Status)
	assert.Equal(t, "book damaged", rejected.RejectionReason)
	// The copy is still out
	assert.Equal(t, 0, bookQuantity(t, db, book.ID))

	// RETURN_REJECTED is non-terminal; the student retries the return
	retried, err := repo.RequestReturn(record.ID, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusPendingReturn, retried.Status)

	returned, err := repo.ApproveReturn(record.ID, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusReturned, returned.Status)
	assert.Equal(t, 1, bookQuantity(t, db, book.ID))
}

func TestApproveReturnReleasesDelistedBook(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBorrowRepository(db)
	book := seedBook(t, db, 1)

	record := pendingRecord(1, book.ID)
	assert.NoError(t, repo.CreatePending(record))
	_, err := repo.ApproveBorrow(record.ID, time.Now())
	assert.NoError(t, err)
	_, err = repo.RequestReturn(record.ID, time.Now())
	assert.NoError(t, err)

	// Title delisted while the copy is out
	assert.NoError(t, db.Delete(&bookdomain.Book{}, book.ID).Error)

	_, err = repo.ApproveReturn(record.ID, time.Now())
	assert.NoError(t, err)

	// The copy is counted back into the soft-deleted row
	assert.Equal(t, 1, bookQuantity(t, db, book.ID))
}

func TestApproveReturnTwiceReleasesOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBorrowRepository(db)
	book := seedBook(t, db, 1)

	record := pendingRecord(1, book.ID)
	assert.NoError(t, repo.CreatePending(record))
	_, err := repo.ApproveBorrow(record.ID, time.Now())
	assert.NoError(t, err)
	_, err = repo.RequestReturn(record.ID, time.Now())
	assert.NoError(t, err)
	_, err = repo.ApproveReturn(record.ID, time.Now())
	assert.NoError(t, err)

	_, err = repo.ApproveReturn(record.ID, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.Equal(t, 1, bookQuantity(t, db, book.ID))
}

func TestFindActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBorrowRepository(db)
	book := seedBook(t, db, 1)

	_, err := repo.FindActive(1, book.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	record := pendingRecord(1, book.ID)
	assert.NoError(t, repo.CreatePending(record))

	active, err := repo.FindActive(1, book.ID)
	assert.NoError(t, err)
	assert.Equal(t, record.ID, active.ID)

	_, err = repo.RejectBorrow(record.ID, "no")
	assert.NoError(t, err)

	_, err = repo.FindActive(1, book.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCountActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBorrowRepository(db)
	first := seedBook(t, db, 1)
	second := seedBook(t, db, 1)

	recA := pendingRecord(1, first.ID)
	recB := pendingRecord(1, second.ID)
	assert.NoError(t, repo.CreatePending(recA))
	assert.NoError(t, repo.CreatePending(recB))

	byUser, err := repo.CountActiveByUser(1)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), byUser)

	byBook, err := repo.CountActiveByBook(first.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), byBook)

	_, err = repo.RejectBorrow(recA.ID, "no")
	assert.NoError(t, err)

	byUser, err = repo.CountActiveByUser(1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), byUser)
}

func TestFindByUID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBorrowRepository(db)
	book := seedBook(t, db, 1)

	record := pendingRecord(1, book.ID)
	assert.NoError(t, repo.CreatePending(record))

	found, err := repo.FindByUID(record.RecordUID)
	assert.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)

	_, err = repo.FindByUID(uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFindByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBorrowRepository(db)
	book := seedBook(t, db, 2)

	recA := pendingRecord(1, book.ID)
	recB := pendingRecord(2, book.ID)
	assert.NoError(t, repo.CreatePending(recA))
	assert.NoError(t, repo.CreatePending(recB))
	_, err := repo.ApproveBorrow(recA.ID, time.Now())
	assert.NoError(t, err)

	pending, err := repo.FindByStatus(domain.StatusPendingBorrow, 0, 0)
	assert.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, recB.ID, pending[0].ID)

	borrowed, err := repo.FindByStatus(domain.StatusBorrowed, 0, 0)
	assert.NoError(t, err)
	assert.Len(t, borrowed, 1)
	assert.Equal(t, recA.ID, borrowed[0].ID)
}
