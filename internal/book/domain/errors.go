package domain

import "errors"

var (
	// ErrNotFound - referenced book does not exist.
	ErrNotFound = errors.New("book not found")

	// ErrDuplicateISBN - another book already carries this ISBN.
	ErrDuplicateISBN = errors.New("isbn already exists")

	// ErrActiveRecords - the book is referenced by active borrow records
	// and cannot be deleted.
	ErrActiveRecords = errors.New("book has active borrow records")

	// ErrValidation - malformed input.
	ErrValidation = errors.New("invalid input")
)
