package core

import (
	"errors"
)

// ErrNotFound is the sentinel error for lookups that matched nothing.
var ErrNotFound = errors.New("not found")

// IsNotFoundError reports whether err wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, ErrNotFound)
}
