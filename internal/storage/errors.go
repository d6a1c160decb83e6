package storage

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist or
	// belongs to another user.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a record violates a uniqueness
	// constraint, such as an email already in use.
	ErrConflict = errors.New("already exists")
)
