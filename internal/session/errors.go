package session

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Update when no session matches the id.
// Delete and GetByID deliberately do not surface it.
var ErrNotFound = errors.New("session not found")

// ParseError marks a corrupted persisted collection. It is recovered
// locally: readers log it and continue with an empty collection.
type ParseError struct {
	Collection string
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s]: %v", e.Collection, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// PersistError marks a failed collection write. Save and Update
// propagate it; losing a session write silently is unacceptable.
type PersistError struct {
	Collection string
	Err        error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist error [%s]: %v", e.Collection, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
