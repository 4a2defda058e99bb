package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by adapters when no record matches the id.
var ErrNotFound = errors.New("storage: record not found")

// NotFoundError wraps ErrNotFound with the collection and id that missed.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("storage: %s/%s not found", e.Collection, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
