package store

import "errors"

// ErrNotFound is returned when no record matches a lookup, including
// owner-scoped updates that match nothing.
var ErrNotFound = errors.New("not found")
