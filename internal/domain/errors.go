package domain

import (
	"errors"
	"fmt"
)

// The error taxonomy every boundary maps to HTTP status classes:
// ValidationError -> 400, NotFoundError -> 404, ConflictError -> 409,
// anything else -> 500.

// ValidationError reports user-correctable bad input.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// Validationf builds a ValidationError with a human-readable message.
func Validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a lookup miss, including a document id that does not
// match the claimed coloc.
type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string { return e.msg }

// NotFoundf builds a NotFoundError with a human-readable message.
func NotFoundf(format string, args ...any) error {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

// ConflictError is reserved for unique-constraint violations. No current
// operation raises it.
type ConflictError struct {
	msg string
}

func (e *ConflictError) Error() string { return e.msg }

// Conflictf builds a ConflictError with a human-readable message.
func Conflictf(format string, args ...any) error {
	return &ConflictError{msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}
