package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	bookdomain "github.com/tair/library-service/internal/book/domain"
	"github.com/tair/library-service/internal/borrow/domain"
)

// GormBorrowRepository implements BorrowRecordRepository using GORM.
// Lifecycle transitions run as a single transaction touching both the
// borrow_records and books tables, guarded by a compare-and-set on the
// record's prior status. RowsAffected == 0 on the guarded update means
// the record moved concurrently: the caller lost the race and gets
// ErrInvalidStateTransition instead of a reapplied side effect.
type GormBorrowRepository struct {
	db *gorm.DB
}

// NewGormBorrowRepository creates a new GORM borrow record repository
func NewGormBorrowRepository(db *gorm.DB) *GormBorrowRepository {
	return &GormBorrowRepository{db: db}
}

// Create inserts a new borrow record without claim checks
func (r *GormBorrowRepository) Create(record *domain.BorrowRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create borrow record: %w", err)
	}
	return nil
}

// FindByID retrieves a record by ID
func (r *GormBorrowRepository) FindByID(id uint) (*domain.BorrowRecord, error) {
	var record domain.BorrowRecord
	if err := r.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find borrow record: %w", err)
	}
	return &record, nil
}

// FindByUID retrieves a record by its public UID
func (r *GormBorrowRepository) FindByUID(uid string) (*domain.BorrowRecord, error) {
	var record domain.BorrowRecord
	if err := r.db.Where("record_uid = ?", uid).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find borrow record: %w", err)
	}
	return &record, nil
}

// FindByUserID retrieves a user's records, newest request first
func (r *GormBorrowRepository) FindByUserID(userID uint, limit, offset int) ([]domain.BorrowRecord, error) {
	return r.findWhere(limit, offset, "user_id = ?", userID)
}

// FindByBookID retrieves all records referencing a book
func (r *GormBorrowRepository) FindByBookID(bookID uint, limit, offset int) ([]domain.BorrowRecord, error) {
	return r.findWhere(limit, offset, "book_id = ?", bookID)
}

// FindAll retrieves all records with pagination
func (r *GormBorrowRepository) FindAll(limit, offset int) ([]domain.BorrowRecord, error) {
	return r.findWhere(limit, offset, "")
}

// FindByStatus retrieves records in a given status
func (r *GormBorrowRepository) FindByStatus(status string, limit, offset int) ([]domain.BorrowRecord, error) {
	return r.findWhere(limit, offset, "status = ?", status)
}

func (r *GormBorrowRepository) findWhere(limit, offset int, cond string, args ...interface{}) ([]domain.BorrowRecord, error) {
	var records []domain.BorrowRecord
	// Stable ordering keys so UI-side pagination is reproducible
	query := r.db.Order("borrow_request_date DESC, id DESC")
	if cond != "" {
		query = query.Where(cond, args...)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to find borrow records: %w", err)
	}
	return records, nil
}

// FindActive returns the single non-terminal record for a (user, book)
// pair, or ErrNotFound when the pair has no outstanding claim
func (r *GormBorrowRepository) FindActive(userID, bookID uint) (*domain.BorrowRecord, error) {
	var record domain.BorrowRecord
	err := r.db.
		Where("user_id = ? AND book_id = ? AND status IN ?", userID, bookID, domain.ActiveStatuses).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active record: %w", err)
	}
	return &record, nil
}

// CountActiveByUser counts a user's non-terminal records
func (r *GormBorrowRepository) CountActiveByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&domain.BorrowRecord{}).
		Where("user_id = ? AND status IN ?", userID, domain.ActiveStatuses).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active records: %w", err)
	}
	return count, nil
}

// CountActiveByBook counts non-terminal records referencing a book
func (r *GormBorrowRepository) CountActiveByBook(bookID uint) (int64, error) {
	var count int64
	err := r.db.Model(&domain.BorrowRecord{}).
		Where("book_id = ? AND status IN ?", bookID, domain.ActiveStatuses).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active records: %w", err)
	}
	return count, nil
}

// CreatePending inserts a PENDING_BORROW record, re-checking the active
// claim inside the transaction so two concurrent requests for the same
// pair cannot both slip through
func (r *GormBorrowRepository) CreatePending(record *domain.BorrowRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&domain.BorrowRecord{}).
			Where("user_id = ? AND book_id = ? AND status IN ?", record.UserID, record.BookID, domain.ActiveStatuses).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check active claims: %w", err)
		}
		if count > 0 {
			return domain.ErrDuplicateActiveClaim
		}

		var book bookdomain.Book
		if err := tx.First(&book, record.BookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to find book: %w", err)
		}

		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create borrow record: %w", err)
		}
		return nil
	})
}

// ApproveBorrow reserves a copy and moves the record to BORROWED in one
// transaction. The quantity decrement is conditional on quantity > 0 and
// the book not being soft-deleted; the status flip is conditional on the
// record still being PENDING_BORROW.
func (r *GormBorrowRepository) ApproveBorrow(id uint, issuedAt time.Time) (*domain.BorrowRecord, error) {
	var record domain.BorrowRecord
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to find borrow record: %w", err)
		}
		if record.Status != domain.StatusPendingBorrow {
			return domain.ErrInvalidStateTransition
		}

		reserve := tx.Model(&bookdomain.Book{}).
			Where("id = ? AND quantity > 0", record.BookID).
			UpdateColumn("quantity", gorm.Expr("quantity - 1"))
		if reserve.Error != nil {
			return fmt.Errorf("failed to reserve copy: %w", reserve.Error)
		}
		if reserve.RowsAffected == 0 {
			// Exhausted or soft-deleted; the record stays PENDING_BORROW
			// for the admin to reject or retry later
			return domain.ErrOutOfStock
		}

		flip := tx.Model(&domain.BorrowRecord{}).
			Where("id = ? AND status = ?", id, domain.StatusPendingBorrow).
			Updates(map[string]interface{}{"status": domain.StatusBorrowed, "issued_date": issuedAt})
		if flip.Error != nil {
			return fmt.Errorf("failed to update borrow record: %w", flip.Error)
		}
		if flip.RowsAffected == 0 {
			return domain.ErrInvalidStateTransition
		}

		record.Status = domain.StatusBorrowed
		record.IssuedDate = &issuedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// RejectBorrow moves PENDING_BORROW to BORROW_REJECTED with a reason
func (r *GormBorrowRepository) RejectBorrow(id uint, reason string) (*domain.BorrowRecord, error) {
	return r.transition(id, []string{domain.StatusPendingBorrow}, map[string]interface{}{
		"status":           domain.StatusBorrowRejected,
		"rejection_reason": reason,
	})
}

// RequestReturn moves BORROWED or RETURN_REJECTED to PENDING_RETURN
func (r *GormBorrowRepository) RequestReturn(id uint, requestedAt time.Time) (*domain.BorrowRecord, error) {
	return r.transition(id, []string{domain.StatusBorrowed, domain.StatusReturnRejected}, map[string]interface{}{
		"status":              domain.StatusPendingReturn,
		"return_request_date": requestedAt,
	})
}

// ApproveReturn releases the copy and moves the record to RETURNED in one
// transaction, setting the return date
func (r *GormBorrowRepository) ApproveReturn(id uint, returnedAt time.Time) (*domain.BorrowRecord, error) {
	var record domain.BorrowRecord
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to find borrow record: %w", err)
		}
		if record.Status != domain.StatusPendingReturn {
			return domain.ErrInvalidStateTransition
		}

		flip := tx.Model(&domain.BorrowRecord{}).
			Where("id = ? AND status = ?", id, domain.StatusPendingReturn).
			Updates(map[string]interface{}{"status": domain.StatusReturned, "return_date": returnedAt})
		if flip.Error != nil {
			return fmt.Errorf("failed to update borrow record: %w", flip.Error)
		}
		if flip.RowsAffected == 0 {
			return domain.ErrInvalidStateTransition
		}

		// Unscoped so a copy of a since-delisted title is still counted back in
		release := tx.Unscoped().Model(&bookdomain.Book{}).
			Where("id = ?", record.BookID).
			UpdateColumn("quantity", gorm.Expr("quantity + 1"))
		if release.Error != nil {
			return fmt.Errorf("failed to release copy: %w", release.Error)
		}

		record.Status = domain.StatusReturned
		record.ReturnDate = &returnedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// RejectReturn moves PENDING_RETURN to RETURN_REJECTED with a reason;
// the status is non-terminal so the student can retry the return
func (r *GormBorrowRepository) RejectReturn(id uint, reason string) (*domain.BorrowRecord, error) {
	return r.transition(id, []string{domain.StatusPendingReturn}, map[string]interface{}{
		"status":           domain.StatusReturnRejected,
		"rejection_reason": reason,
	})
}

// transition performs a side-effect-free CAS status update
func (r *GormBorrowRepository) transition(id uint, from []string, updates map[string]interface{}) (*domain.BorrowRecord, error) {
	var record domain.BorrowRecord
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to find borrow record: %w", err)
		}

		res := tx.Model(&domain.BorrowRecord{}).
			Where("id = ? AND status IN ?", id, from).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to update borrow record: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrInvalidStateTransition
		}

		if err := tx.First(&record, id).Error; err != nil {
			return fmt.Errorf("failed to reload borrow record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// AutoMigrate runs database migrations for the borrow service
func (r *GormBorrowRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&bookdomain.Book{}, &domain.BorrowRecord{})
}
