package domain

import "errors"

// Sentinel errors surfaced by the user service. Handlers map these to
// HTTP status codes and machine-readable error codes.
var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicate is returned when a username or email is already taken.
	ErrDuplicate = errors.New("username or email already exists")

	// ErrActiveLoans is returned when deletion is refused because the
	// user still holds active borrow records.
	ErrActiveLoans = errors.New("user has active borrow records")

	// ErrInvalidCredentials is returned on a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrValidation is returned when command input fails validation.
	ErrValidation = errors.New("validation failed")
)
