package subscription

import "errors"

// Sentinel errors surfaced by the repository layer.
var (
	// ErrConflict is a unique-constraint violation: a duplicate email on
	// insert, or a colliding token. Not retried automatically.
	ErrConflict = errors.New("unique constraint conflict")

	// ErrUnavailable is a transient infrastructure failure; the caller
	// may retry the whole submission.
	ErrUnavailable = errors.New("store unavailable")
)
