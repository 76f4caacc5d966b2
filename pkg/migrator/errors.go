package migrator

import "github.com/pkg/errors"

var (
	// ErrNotFound is returned when no migration matches a name.
	ErrNotFound = errors.New("migration not found")

	// ErrAlreadyExists is returned when the target migration directory exists.
	ErrAlreadyExists = errors.New("migration already exists")

	// ErrAmbiguousMatch is returned when several migrations share a name and no
	// choice could be made between them.
	ErrAmbiguousMatch = errors.New("multiple migrations match")

	// ErrInvalidName is returned for names that can't be used as a directory suffix.
	ErrInvalidName = errors.New("invalid migration name")
)
