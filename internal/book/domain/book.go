package domain

import (
	"time"

	"gorm.io/gorm"
)

// Book represents a title in the catalog. Quantity counts copies not
// currently on loan; it is mutated only by borrow lifecycle approvals.
type Book struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Title     string         `json:"title" gorm:"not null"`
	Author    string         `json:"author" gorm:"not null"`
	ISBN      string         `json:"isbn" gorm:"uniqueIndex;not null"`
	Category  string         `json:"category"`
	Quantity  int            `json:"quantity" gorm:"not null;default:0;check:quantity >= 0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"` // Soft delete
}

// TableName specifies the table name
func (Book) TableName() string {
	return "books"
}

// IsAvailable reports whether at least one copy can be reserved
func (b *Book) IsAvailable() bool {
	return b.Quantity > 0
}

// BookRepository defines the contract for catalog data access
type BookRepository interface {
	Create(book *Book) error
	FindByID(id uint) (*Book, error)
	FindByISBN(isbn string) (*Book, error)
	FindAll(limit, offset int) ([]Book, error)
	FindByCategory(category string, limit, offset int) ([]Book, error)
	Update(book *Book) error
	Delete(id uint) error
	Count() (int64, error)
	CountAvailable() (int64, error)
}

// BorrowGuard answers whether active borrow records still reference a
// book; consulted before a soft delete.
type BorrowGuard interface {
	CountActiveByBook(bookID uint) (int64, error)
}
