package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tair/library-service/internal/book/domain"
)

// GormBookRepository implements BookRepository interface using GORM
type GormBookRepository struct {
	db *gorm.DB
}

// NewGormBookRepository creates a new GORM book repository
func NewGormBookRepository(db *gorm.DB) *GormBookRepository {
	return &GormBookRepository{db: db}
}

// Create inserts a new book into the catalog
func (r *GormBookRepository) Create(book *domain.Book) error {
	if err := r.db.Create(book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// FindByID retrieves a book by ID
func (r *GormBookRepository) FindByID(id uint) (*domain.Book, error) {
	var book domain.Book
	if err := r.db.First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find book: %w", err)
	}
	return &book, nil
}

// FindByISBN retrieves a book by ISBN
func (r *GormBookRepository) FindByISBN(isbn string) (*domain.Book, error) {
	var book domain.Book
	if err := r.db.Where("isbn = ?", isbn).First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find book: %w", err)
	}
	return &book, nil
}

// FindAll retrieves all books with pagination, title order
func (r *GormBookRepository) FindAll(limit, offset int) ([]domain.Book, error) {
	return r.findWhere(limit, offset, "")
}

// FindByCategory retrieves books in a category with pagination
func (r *GormBookRepository) FindByCategory(category string, limit, offset int) ([]domain.Book, error) {
	return r.findWhere(limit, offset, "category = ?", category)
}

func (r *GormBookRepository) findWhere(limit, offset int, cond string, args ...interface{}) ([]domain.Book, error) {
	var books []domain.Book
	query := r.db.Order("title ASC, id ASC")
	if cond != "" {
		query = query.Where(cond, args...)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to find books: %w", err)
	}
	return books, nil
}

// Update updates a book's information
func (r *GormBookRepository) Update(book *domain.Book) error {
	if err := r.db.Save(book).Error; err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	return nil
}

// Delete soft deletes a book from the catalog
func (r *GormBookRepository) Delete(id uint) error {
	result := r.db.Delete(&domain.Book{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete book: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the total number of books in the catalog
func (r *GormBookRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&domain.Book{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}

// CountAvailable returns the number of books with at least one free copy
func (r *GormBookRepository) CountAvailable() (int64, error) {
	var count int64
	if err := r.db.Model(&domain.Book{}).Where("quantity > 0").Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count available books: %w", err)
	}
	return count, nil
}

// AutoMigrate runs database migrations
func (r *GormBookRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Book{})
}
