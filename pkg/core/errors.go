package core

import "errors"

// Common errors.
var (
	// ErrNotFound is returned by mutators that target a missing entity.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidBackup is returned by ImportBackup for payloads missing the
	// mandatory keys. Existing local state is never mutated in that case.
	ErrInvalidBackup = errors.New("invalid backup payload")

	// ErrInvalidRating is returned for ratings outside -1..10.
	ErrInvalidRating = errors.New("rating out of range")

	// ErrClosed is returned by operations on a closed service.
	ErrClosed = errors.New("service is closed")
)
