// Package domain holds the quote model, the reconciliation rules and the
// error kinds shared by every adapter. HTTP and CLI adapters map the kinds
// to status codes and exit messages.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a state conflict such as resolving an item twice.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates business rule validation failed.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable indicates a required dependency is unavailable.
	// Transport failures against the remote collection surface as this error.
	ErrUnavailable = errors.New("unavailable")

	// ErrFormat indicates an imported or persisted document has the wrong shape.
	ErrFormat = errors.New("invalid format")
)

// NotFoundError reports a missing quote, batch, item or category.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports a sync decision that no longer applies.
type ConflictError struct {
	Entity  string
	Reason  string
	Details string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s conflict: %s (%s)", e.Entity, e.Reason, e.Details)
	}

	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// NewConflictError creates a conflict error with context.
func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

// NewConflictErrorWithDetails creates a conflict error with additional details.
func NewConflictErrorWithDetails(entity, reason, details string) error {
	return &ConflictError{Entity: entity, Reason: reason, Details: details}
}

// ValidationError names the quote field that broke a rule.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ValidationFields collects field messages from every ValidationError in err,
// including those combined with errors.Join.
func ValidationFields(err error) map[string]string {
	fields := make(map[string]string)
	collectValidationFields(err, fields)

	return fields
}

func collectValidationFields(err error, fields map[string]string) {
	if err == nil {
		return
	}

	var v *ValidationError
	if errors.As(err, &v) && v.Field != "" {
		if _, seen := fields[v.Field]; !seen {
			fields[v.Field] = v.Message
		}
	}

	switch e := err.(type) { //nolint:errorlint // walking the join tree explicitly
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			collectValidationFields(inner, fields)
		}
	case interface{ Unwrap() error }:
		collectValidationFields(e.Unwrap(), fields)
	}
}

// UnavailableError reports a remote collection or store that cannot be reached.
type UnavailableError struct {
	Service string
	Reason  string
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NewUnavailableError creates an unavailable error with context.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// FormatError reports a malformed import document or persisted collection.
type FormatError struct {
	Source string
	Reason string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s has invalid format: %s", e.Source, e.Reason)
	}

	return e.Source + " has invalid format"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *FormatError) Unwrap() error {
	return ErrFormat
}

// NewFormatError creates a format error with context.
func NewFormatError(source, reason string) error {
	return &FormatError{Source: source, Reason: reason}
}

// IsNotFound and its siblings test err against the matching sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

func IsFormat(err error) bool {
	return errors.Is(err, ErrFormat)
}
