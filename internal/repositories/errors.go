package repositories

import "errors"

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("entity not found")
	// ErrInvalidID is returned when an identifier is malformed.
	ErrInvalidID = errors.New("invalid id format")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate entity")
)
