package services

import (
	"errors"

	"github.com/student-records/apiserver/internal/store"
)

var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrPasswordTooLong   = errors.New("password exceeds 72 bytes")

	// ErrExportUnavailable is returned when no object storage is configured.
	ErrExportUnavailable = errors.New("student export is not configured")
)

// duplicateError maps a unique index violation onto the directory error
// for the violated field. Other errors pass through.
func duplicateError(err error) error {
	var dup *store.DuplicateKeyError
	if !errors.As(err, &dup) {
		return err
	}
	switch dup.Field {
	case "username":
		return ErrDuplicateUsername
	case "email":
		return ErrDuplicateEmail
	default:
		return err
	}
}
