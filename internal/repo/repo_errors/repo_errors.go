package repo_errors

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a guarded update matched no row because a
	// concurrent writer changed the status first.
	ErrConflict = errors.New("conflicting concurrent update")
)
