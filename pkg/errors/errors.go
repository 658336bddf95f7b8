// Package errors provides custom error types for the zcatalog system.
// These errors separate fatal input problems (corrupt files, bad
// configuration) from recoverable conditions that the pipeline logs
// and works around, and enable programmatic checks via errors.Is.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// As is an alias for the standard library errors.As.
var As = errors.As

// Is is an alias for the standard library errors.Is.
var Is = errors.Is

// Common sentinel errors for the zcatalog system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrCorruptInput indicates that an input file failed a consistency check
	ErrCorruptInput = errors.New("corrupt input")

	// ErrNoFiles indicates that file discovery matched nothing
	ErrNoFiles = errors.New("no matching result files")

	// ErrGroupMismatch indicates a file belongs to a different grouping scheme
	ErrGroupMismatch = errors.New("grouping mismatch")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// RowMismatchError reports tables within one result file that disagree on
// row count or identifier ordering. This is a data-corruption signal and
// always aborts the run.
type RowMismatchError struct {
	File   string
	Tables [2]string
	Rows   [2]int64
	Detail string
}

// Error implements the error interface
func (e *RowMismatchError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("tables %s and %s disagree in %s: %s",
			e.Tables[0], e.Tables[1], e.File, e.Detail)
	}
	return fmt.Sprintf("tables %s and %s disagree in %s: %d rows vs %d rows",
		e.Tables[0], e.Tables[1], e.File, e.Rows[0], e.Rows[1])
}

// Is implements errors.Is support
func (e *RowMismatchError) Is(target error) bool {
	return target == ErrCorruptInput
}

// NewRowMismatchError creates a new RowMismatchError from two table names
// and their row counts.
func NewRowMismatchError(file, a, b string, rowsA, rowsB int64) *RowMismatchError {
	return &RowMismatchError{File: file, Tables: [2]string{a, b}, Rows: [2]int64{rowsA, rowsB}}
}

// GroupMismatchError reports a result file whose recorded grouping scheme
// differs from the one requested for this run. Files with this error are
// skipped, not fatal.
type GroupMismatchError struct {
	File string
	Want string
	Got  string
}

// Error implements the error interface
func (e *GroupMismatchError) Error() string {
	return fmt.Sprintf("%s groups spectra by %q, not %q", e.File, e.Got, e.Want)
}

// Is implements errors.Is support
func (e *GroupMismatchError) Is(target error) bool {
	return target == ErrGroupMismatch
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "rename", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{Operation: operation, Path: path, Message: message, Err: err}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "fits", "yaml", "header card", etc.
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// PatchError represents a failure while patching calibration values from a
// reference catalog. Patch errors never abort the run; they mark rows that
// stay unpatched.
type PatchError struct {
	Pixel     int
	TargetIDs []int64
	Err       error
}

// Error implements the error interface
func (e *PatchError) Error() string {
	if len(e.TargetIDs) > 0 {
		return fmt.Sprintf("patch failed for pixel %d (%d targets unresolved): %v",
			e.Pixel, len(e.TargetIDs), e.Err)
	}
	return fmt.Sprintf("patch failed for pixel %d: %v", e.Pixel, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *PatchError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsCorruptInput checks if an error indicates corrupt input data
func IsCorruptInput(err error) bool {
	return errors.Is(err, ErrCorruptInput)
}

// IsGroupMismatch checks if an error is a grouping-scheme mismatch
func IsGroupMismatch(err error) bool {
	return errors.Is(err, ErrGroupMismatch)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}
