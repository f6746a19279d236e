package domain

import "time"

// Borrow record statuses. A record is "active" while its status is
// non-terminal; at most one active record may exist per (user, book) pair.
const (
	StatusPendingBorrow  = "PENDING_BORROW"
	StatusBorrowed       = "BORROWED"
	StatusPendingReturn  = "PENDING_RETURN"
	StatusReturned       = "RETURNED"
	StatusBorrowRejected = "BORROW_REJECTED"
	StatusReturnRejected = "RETURN_REJECTED"
)

// ActiveStatuses are the non-terminal statuses. RETURN_REJECTED stays
// active: the student still holds the book and may retry the return.
var ActiveStatuses = []string{
	StatusPendingBorrow,
	StatusBorrowed,
	StatusPendingReturn,
	StatusReturnRejected,
}

// IsTerminal reports whether a status permits no further transitions
func IsTerminal(status string) bool {
	return status == StatusReturned || status == StatusBorrowRejected
}

// BorrowRecord represents one loan attempt for a (user, book) pair.
// Records are never deleted; terminal records form the borrow history.
type BorrowRecord struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	RecordUID         string     `json:"record_uid" gorm:"type:uuid;uniqueIndex;not null"`
	UserID            uint       `json:"user_id" gorm:"not null;index:idx_user_book"`
	BookID            uint       `json:"book_id" gorm:"not null;index:idx_user_book"`
	Status            string     `json:"status" gorm:"size:20;not null;index"`
	BorrowRequestDate time.Time  `json:"borrow_request_date"`
	IssuedDate        *time.Time `json:"issued_date,omitempty"`
	ReturnRequestDate *time.Time `json:"return_request_date,omitempty"`
	ReturnDate        *time.Time `json:"return_date,omitempty"`
	RejectionReason   string     `json:"rejection_reason,omitempty" gorm:"size:255"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName specifies the table name
func (BorrowRecord) TableName() string {
	return "borrow_records"
}

// IsActive reports whether the record blocks a new claim on its book
func (r *BorrowRecord) IsActive() bool {
	return !IsTerminal(r.Status)
}

// Actor identifies who is invoking a lifecycle transition
type Actor struct {
	UserID uint
	Role   string
}

// Actor roles, mirrored from the user service
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// IsAdmin checks if the actor has the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// BorrowRecordRepository defines the contract for the borrow record store.
// Transition methods are compare-and-set on the record's prior status and
// bundle their inventory side effect into the same transaction, so a lost
// race surfaces as ErrInvalidStateTransition rather than a double effect.
type BorrowRecordRepository interface {
	Create(record *BorrowRecord) error
	FindByID(id uint) (*BorrowRecord, error)
	FindByUID(uid string) (*BorrowRecord, error)
	FindByUserID(userID uint, limit, offset int) ([]BorrowRecord, error)
	FindByBookID(bookID uint, limit, offset int) ([]BorrowRecord, error)
	FindAll(limit, offset int) ([]BorrowRecord, error)
	FindByStatus(status string, limit, offset int) ([]BorrowRecord, error)
	FindActive(userID, bookID uint) (*BorrowRecord, error)
	CountActiveByUser(userID uint) (int64, error)
	CountActiveByBook(bookID uint) (int64, error)

	// CreatePending inserts a PENDING_BORROW record unless an active one
	// already exists for the pair (ErrDuplicateActiveClaim).
	CreatePending(record *BorrowRecord) error
	// ApproveBorrow moves PENDING_BORROW to BORROWED and reserves one copy
	// atomically. Fails with ErrOutOfStock when no copy is available.
	ApproveBorrow(id uint, issuedAt time.Time) (*BorrowRecord, error)
	// RejectBorrow moves PENDING_BORROW to the terminal BORROW_REJECTED.
	RejectBorrow(id uint, reason string) (*BorrowRecord, error)
	// RequestReturn moves BORROWED or RETURN_REJECTED to PENDING_RETURN.
	RequestReturn(id uint, requestedAt time.Time) (*BorrowRecord, error)
	// ApproveReturn moves PENDING_RETURN to RETURNED and releases the copy
	// atomically, setting the return date.
	ApproveReturn(id uint, returnedAt time.Time) (*BorrowRecord, error)
	// RejectReturn moves PENDING_RETURN to RETURN_REJECTED.
	RejectReturn(id uint, reason string) (*BorrowRecord, error)
}
