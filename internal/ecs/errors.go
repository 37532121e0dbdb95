package ecs

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleEntity indicates an identity whose generation no longer
	// matches its slot: the entity was destroyed.
	ErrStaleEntity = errors.New("ecs: stale entity")

	// ErrNotFound indicates the entity has no component in the store.
	ErrNotFound = errors.New("ecs: component not found")
)

// A lookup through a dead identity is both "not found" and "stale".
var errStaleLookup = fmt.Errorf("%w: %w", ErrNotFound, ErrStaleEntity)

// EntityError wraps a store error with the identity that caused it.
type EntityError struct {
	Entity  Entity
	Wrapped error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%v: %s", e.Wrapped, e.Entity)
}

func (e *EntityError) Unwrap() error {
	return e.Wrapped
}
