package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced id is absent. Operations
	// that are already in the desired state return nil instead, so callers
	// can tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for malformed arguments.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTransition is returned when a booking status change is not
	// allowed by the lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrSuperseded is returned by a search that a newer search replaced.
	ErrSuperseded = errors.New("superseded by a newer call")

	// ErrCorruptProjection is returned when a persisted projection cannot
	// be decoded. The store is reset to defaults when it happens.
	ErrCorruptProjection = errors.New("corrupt projection")
)

// NotFoundError names the missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a NotFoundError.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}
