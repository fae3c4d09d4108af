package repository

import "errors"

var (
	ErrNotFound = errors.New("record not found")
	// ErrStaleState is returned when a conditional write finds the session
	// is no longer in progress.
	ErrStaleState = errors.New("session is not in progress")
	ErrDuplicate  = errors.New("duplicate key")
)
