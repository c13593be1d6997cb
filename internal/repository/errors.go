package repository

import "errors"

var (
	// ErrNotFound is returned by updates and deletes that matched no row
	// owned by the user.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects an insert.
	ErrDuplicate = errors.New("record already exists")
)
