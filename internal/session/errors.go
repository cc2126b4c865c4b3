package session

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyName is returned when a bookmark is saved without a name.
	ErrEmptyName = errors.New("bookmark name is required")

	// ErrNothingToSave is returned when there is no query to bookmark.
	ErrNothingToSave = errors.New("no query to save")

	// ErrPersistenceWriteFailed is matched by every *PersistenceError.
	ErrPersistenceWriteFailed = errors.New("bookmark write-through failed")

	// ErrNotFound is returned when an id does not match any entry.
	ErrNotFound = errors.New("not found")
)

// PersistenceError reports a failed write-through. The in-memory change it
// accompanies has been kept.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v (saved for this session, may not survive restart)",
		ErrPersistenceWriteFailed.Error(), e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistenceWriteFailed, e.Err}
}
