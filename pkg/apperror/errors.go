// Package apperror provides a structured way to handle application errors
// with specific codes, severity levels, and additional details. Codes map
// onto gRPC status codes, which the bench CLI uses for its exit status.
package apperror

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
)

// ErrorCode represents a specific application error code.
type ErrorCode string

const (
	// Graph construction
	CodeEmptyGraph     ErrorCode = "EMPTY_GRAPH"
	CodeInvalidIndex   ErrorCode = "INVALID_INDEX"
	CodeNegativeWeight ErrorCode = "NEGATIVE_WEIGHT"
	CodeDuplicateEdge  ErrorCode = "DUPLICATE_EDGE"
	CodeIsolatedNode   ErrorCode = "ISOLATED_NODE"
	CodeInvalidFormat  ErrorCode = "INVALID_FORMAT"

	// Traversal
	CodeAlgorithmMismatch ErrorCode = "ALGORITHM_MISMATCH"
	CodeCanceled          ErrorCode = "CANCELED"

	// General
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	CodeNilInput        ErrorCode = "NIL_INPUT"
)

// Severity defines the criticality level of an error.
type Severity int

const (
	// SeverityError indicates a standard error that requires attention.
	SeverityError Severity = iota
	// SeverityCritical indicates a broken internal invariant.
	SeverityCritical
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Error is a custom error type that includes an ErrorCode, message,
// an optional field, additional details, an underlying cause, and a severity level.
type Error struct {
	Code     ErrorCode      // Code is a unique identifier for the type of error.
	Message  string         // Message is a human-readable description of the error.
	Field    string         // Field indicates which input field caused the error, if applicable.
	Details  map[string]any // Details provides additional structured information about the error.
	Cause    error          // Cause is the underlying error that triggered this application error.
	Severity Severity       // Severity indicates the criticality level of the error.
}

// Error implements the error interface, returning a string representation of the error.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error, allowing for error chain introspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new application error with the given code and message.
// The default severity is SeverityError.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// NewWithField creates a new application error with the given code, message, and field.
func NewWithField(code ErrorCode, message, field string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Field:    field,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// NewCritical creates a new application error with SeverityCritical.
func NewCritical(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityCritical,
	}
}

// Wrap creates a new application error that wraps an existing error,
// providing additional context with a code and message.
func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Cause:    cause,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// WithDetails adds a key-value pair to the error's details map and returns the modified error.
func (e *Error) WithDetails(key string, value any) *Error {
	e.Details[key] = value
	return e
}

// WithField sets the field associated with the error and returns the modified error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// Is checks if the given error is an application error with a matching ErrorCode.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from an error. If the error is not an *Error,
// it returns CodeInternal.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// GRPCCode maps the code of err onto a gRPC status code. Errors that are
// not *Error map to codes.Internal.
func GRPCCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	switch Code(err) {
	case CodeEmptyGraph, CodeInvalidIndex, CodeNegativeWeight, CodeDuplicateEdge,
		CodeIsolatedNode, CodeInvalidFormat, CodeInvalidArgument, CodeNilInput:
		return codes.InvalidArgument

	case CodeAlgorithmMismatch:
		return codes.FailedPrecondition

	case CodeNotFound:
		return codes.NotFound

	case CodeCanceled:
		return codes.Canceled

	default:
		return codes.Internal
	}
}

// IsCritical checks if the given error is an application error with SeverityCritical.
func IsCritical(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Severity == SeverityCritical
	}
	return false
}

// ValidationErrors collects the errors of several validation checks.
type ValidationErrors struct {
	Errors []*Error
}

// NewValidationErrors creates and returns a new empty ValidationErrors collection.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Errors: make([]*Error, 0)}
}

// AddErrorWithField creates and adds a new application error bound to an input field.
func (v *ValidationErrors) AddErrorWithField(code ErrorCode, message, field string) {
	v.Errors = append(v.Errors, NewWithField(code, message, field))
}

// HasErrors returns true if the collection contains any errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// First returns the first collected error, or nil.
func (v *ValidationErrors) First() error {
	if !v.HasErrors() {
		return nil
	}
	return v.Errors[0]
}

// Predefined errors for common situations. Wrap them to attach details.
var (
	ErrEmptyGraph        = New(CodeEmptyGraph, "graph has no vertices")
	ErrNilGraph          = New(CodeNilInput, "graph is nil")
	ErrSameEndpoints     = New(CodeInvalidArgument, "path endpoints must differ")
	ErrPatternsExhausted = New(CodeNotFound, "no more syndrome patterns")
)
