package apierrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ValidationError reports malformed or out-of-enum input. It's always
// caller-fixable and never retried by the engine.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationErrorf(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NotFoundError reports an absent referenced entity.
type NotFoundError struct {
	Entity string
	ID     uint
}

func NewNotFoundError(entity string, id uint) *NotFoundError {
	return &NotFoundError{
		Entity: entity,
		ID:     id,
	}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s with id %d", e.Entity, e.ID)
}

// InvalidStateError reports an operation illegal in the entity's current
// state, including the single-flight analysis conflict.
type InvalidStateError struct {
	Current   string
	Attempted string
}

func NewInvalidStateError(current, attempted string) *InvalidStateError {
	return &InvalidStateError{
		Current:   current,
		Attempted: attempted,
	}
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("can't %s in state %q", e.Attempted, e.Current)
}

// StorageError wraps an underlying persistence failure. It's surfaced as a
// generic retryable failure without store details.
type StorageError struct {
	Err error
}

func NewStorageError(err error) *StorageError {
	return &StorageError{Err: err}
}

func (e *StorageError) Error() string {
	return "storage failure: " + e.Err.Error()
}

func (e *StorageError) Cause() error {
	return e.Err
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

func IsNotFoundError(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

func IsInvalidStateError(err error) bool {
	_, ok := errors.Cause(err).(*InvalidStateError)
	return ok
}

func IsStorageError(err error) bool {
	for err != nil {
		if _, ok := err.(*StorageError); ok {
			return true
		}

		cause, ok := err.(interface{ Cause() error })
		if !ok {
			return false
		}
		err = cause.Cause()
	}
	return false
}
