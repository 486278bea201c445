package todo

import "errors"

var (
	// ErrUnauthenticated indicates no caller identity was resolved.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidInput indicates a missing title or an unparsable id.
	ErrInvalidInput = errors.New("invalid todo input")
)
