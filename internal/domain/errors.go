// Package domain holds the quote journal's types and rules: quotes, the
// search filter, and the widget payload.
//
// Errors here say what went wrong with a quote operation. Adapters decide
// how to report them; the HTTP layer maps each kind to a status code.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds, matched with errors.Is.
var (
	// ErrNotFound: no quote or shared value under the given identity.
	ErrNotFound = errors.New("not found")

	// ErrConflict: a quote with the same ID is already stored.
	ErrConflict = errors.New("conflict")

	// ErrValidation: the input broke a rule of the journal.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable: the quote store or the shared storage cannot be used.
	ErrUnavailable = errors.New("unavailable")
)

// NotFoundError names what was looked up. ID may be empty when the lookup
// had no identity, such as an unpublished widget slot.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}

	return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError explains why a write collided with stored state.
type ConflictError struct {
	Entity string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NewConflictError reports a collision with stored state.
func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

// ValidationError ties a broken rule to the input field clients sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}

	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError reports a broken rule on field. Field may be empty
// when the rule spans the whole input.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// PositionError rejects a delete position outside the displayed list. The
// whole delete is refused, so no quote is removed.
type PositionError struct {
	Position int
	Visible  int
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("validation failed for positions: position %d out of range, %d quotes displayed",
		e.Position, e.Visible)
}

func (e *PositionError) Unwrap() error { return ErrValidation }

// AsValidation returns the field form of the error for error details.
func (e *PositionError) AsValidation() *ValidationError {
	return &ValidationError{
		Field:   "positions",
		Message: fmt.Sprintf("position %d out of range [0,%d)", e.Position, e.Visible),
	}
}

// UnavailableError reports a backing service that cannot be used right now.
// Reason may name paths or drivers and is meant for logs, not clients.
type UnavailableError struct {
	Service string
	Reason  string
}

func (e *UnavailableError) Error() string {
	if e.Reason == "" {
		return e.Service + " unavailable"
	}

	return fmt.Sprintf("%s unavailable: %s", e.Service, e.Reason)
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

// NewUnavailableError reports an unusable backing service.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// FieldError returns the field-level validation failure carried by err, if
// any.
func FieldError(err error) (*ValidationError, bool) {
	var posErr *PositionError
	if errors.As(err, &posErr) {
		return posErr.AsValidation(), true
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) && valErr.Field != "" {
		return valErr, true
	}

	return nil, false
}

// IsNotFound reports whether err is of kind ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err is of kind ErrConflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsValidation reports whether err is of kind ErrValidation.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsUnavailable reports whether err is of kind ErrUnavailable.
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
