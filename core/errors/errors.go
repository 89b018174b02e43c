// Package errors provides standardized error types and helpers for the ChronoVerse codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingCredentials indicates a source requires credentials that were not supplied
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrUnsupported indicates an unsupported operation or translation
	ErrUnsupported = errors.New("unsupported")
	// ErrInternal indicates an internal system error
	ErrInternal = errors.New("internal error")
)

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "verse", "book", "translation")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// AdapterError represents a transient failure of a verse source adapter.
// Adapter errors are absorbed by the fallback chain and never fatal.
type AdapterError struct {
	Source      string // Adapter name (e.g., "scrape", "keyed-api")
	Translation string // Translation code being fetched
	Reference   string // Reference being fetched
	Err         error  // Underlying error
}

func (e *AdapterError) Error() string {
	if e.Reference != "" {
		return fmt.Sprintf("source %s failed for %s (%s): %v", e.Source, e.Reference, e.Translation, e.Err)
	}
	return fmt.Sprintf("source %s failed: %v", e.Source, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// CacheWriteError represents a durable-storage write failure after a
// successful remote fetch. The in-memory entry is kept; persistence is
// retried on the next mutation.
type CacheWriteError struct {
	Translation string // Translation cache that failed to persist
	Reference   string // Reference whose write failed
	Err         error  // Underlying error
}

func (e *CacheWriteError) Error() string {
	return fmt.Sprintf("failed to persist %s (%s): %v", e.Reference, e.Translation, e.Err)
}

func (e *CacheWriteError) Unwrap() error {
	return e.Err
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "JSON", "XML", "reference")
	Input   string // Input being parsed, if short enough to include
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("failed to parse %s %q: %s", e.Format, e.Input, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// Helper functions for creating common errors

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewAdapter creates an AdapterError
func NewAdapter(source, translation, reference string, err error) *AdapterError {
	return &AdapterError{
		Source:      source,
		Translation: translation,
		Reference:   reference,
		Err:         err,
	}
}

// NewCacheWrite creates a CacheWriteError
func NewCacheWrite(translation, reference string, err error) *CacheWriteError {
	return &CacheWriteError{
		Translation: translation,
		Reference:   reference,
		Err:         err,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewParse creates a ParseError
func NewParse(format, input, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Input:   input,
		Message: message,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
