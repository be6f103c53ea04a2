package repository

// Error types reused across the repositories. The service layer tells a
// missing row from a constraint violation without inspecting
// driver-specific errors.

import "errors"

// ErrNotFound is returned when no row matches the lookup. Owner-scoped
// lookups return it both for missing rows and for rows that belong to
// another user.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique constraint,
// such as registering a username or email that is already taken.
var ErrDuplicate = errors.New("duplicate")

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
