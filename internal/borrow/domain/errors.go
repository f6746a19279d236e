package domain

import "errors"

// Domain error kinds. Callers (and the HTTP delivery layer) branch on
// these with errors.Is instead of parsing message text.
var (
	// ErrDuplicateActiveClaim - the user already has a non-terminal record
	// for this book.
	ErrDuplicateActiveClaim = errors.New("user already has an active record for this book")

	// ErrOutOfStock - approval attempted with zero available copies.
	ErrOutOfStock = errors.New("no copies available")

	// ErrInvalidStateTransition - the transition does not apply to the
	// record's current status (double approval, resolved elsewhere, etc.).
	ErrInvalidStateTransition = errors.New("transition not allowed from current status")

	// ErrNotFound - referenced record, book or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized - actor lacks the role or ownership for the transition.
	ErrUnauthorized = errors.New("operation not permitted for this actor")

	// ErrValidation - malformed input (missing rejection reason, bad id).
	ErrValidation = errors.New("invalid input")
)
