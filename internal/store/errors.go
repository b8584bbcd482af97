package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidID is returned when a filter carries a malformed identifier.
	ErrInvalidID = errors.New("invalid identifier")

	// ErrDuplicateKey matches any *DuplicateKeyError.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrUnknownField is returned when a filter or update names a field the
	// collection does not have.
	ErrUnknownField = errors.New("unknown field")
)

// DuplicateKeyError reports a write rejected by a unique index.
type DuplicateKeyError struct {
	Collection string
	Field      string
	Err        error
}

func (e *DuplicateKeyError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("duplicate key in %s", e.Collection)
	}
	return fmt.Sprintf("duplicate %s in %s", e.Field, e.Collection)
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}
