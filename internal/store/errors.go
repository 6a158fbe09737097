package store

import "errors"

var (
	// ErrConflict reports a write rejected by a uniqueness rule.
	ErrConflict = errors.New("record conflicts with existing data")
	ErrNotFound = errors.New("record not found")
)
