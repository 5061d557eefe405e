package filesystem

import (
	"errors"
	"fmt"
)

// Error kinds returned by [Tree] operations. Match them with errors.Is; every
// returned error wraps exactly one kind, except not-directory errors which
// also match [ErrInvalidEntry].
var (
	ErrNotFound     = errors.New("not found")
	ErrNotDirectory = errors.New("not a directory")
	ErrInvalidEntry = errors.New("invalid entry")
	ErrReadOnly     = errors.New("read-only property")
)

func errf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

func notDirectoryf(format string, args ...any) error {
	return fmt.Errorf("%w: %w", ErrInvalidEntry, errf(ErrNotDirectory, format, args...))
}
