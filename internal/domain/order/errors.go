package order

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// ErrNotFound reports that no order exists for the requested identifier.
// Repositories return it for absent rows; the service wraps it into a
// *NotFoundError carrying the identifier.
var ErrNotFound = errors.New("order not found")

// ValidationError indicates the order failed a construction or update rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError indicates a specific order does not exist.
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidStatusError indicates an illegal status transition.
type InvalidStatusError struct {
	Op     string
	Status Status
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("cannot %s order in %s status", e.Op, e.Status)
}

// DuplicateIDError indicates a create hit an already-taken identifier. With
// random UUIDs this should never happen, but the repository guards it anyway.
type DuplicateIDError struct {
	ID uuid.UUID
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("order %s already exists", e.ID)
}
