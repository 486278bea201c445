package repository

import "errors"

var (
	// ErrNotFound is returned when no record matches both the id and the owner.
	// Missing and foreign records are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a unique constraint rejects a write
	ErrDuplicate = errors.New("duplicate")
)
