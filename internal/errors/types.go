// Package errors provides the structured error type used at the edges of
// rsc: configuration loading, the HTTP runtime, the CLI and the component
// graph checker.
//
// Errors returned by rendering a component are never rewrapped by the
// layout; wrapping happens only where a caller decides how to report them.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeRender     ErrorType = "render"
	ErrorTypeBoundary   ErrorType = "boundary"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeConfigLoad       = "ERR_CONFIG_LOAD"
	ErrCodePageNotFound     = "ERR_PAGE_NOT_FOUND"
	ErrCodeRenderFailed     = "ERR_RENDER_FAILED"
	ErrCodeDocumentInvalid  = "ERR_DOCUMENT_INVALID"
	ErrCodeParseFailed      = "ERR_PARSE_FAILED"
	ErrCodeGraphViolation   = "ERR_GRAPH_VIOLATION"
	ErrCodeFileNotFound     = "ERR_FILE_NOT_FOUND"
	ErrCodeServerStart      = "ERR_SERVER_START"
	ErrCodeInternalError    = "ERR_INTERNAL"
	ErrCodeValidationFailed = "ERR_VALIDATION_FAILED"
)

// Error is a structured error with context.
type Error struct {
	Type     ErrorType
	Code     string
	Message  string
	Cause    error
	Context  map[string]interface{}
	FilePath string
	Line     int
	Column   int
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.FilePath != "" {
		location := e.FilePath
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
			if e.Column > 0 {
				location += fmt.Sprintf(":%d", e.Column)
			}
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same type and code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithLocation adds file location information.
func (e *Error) WithLocation(filePath string, line, column int) *Error {
	e.FilePath = filePath
	e.Line = line
	e.Column = column

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *Error {
	return &Error{Type: ErrorTypeValidation, Code: code, Message: message}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *Error {
	return &Error{Type: ErrorTypeConfig, Code: code, Message: message}
}

// NewBoundaryError creates a component graph error.
func NewBoundaryError(code, message string) *Error {
	return &Error{Type: ErrorTypeBoundary, Code: code, Message: message}
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(code, message string) *Error {
	return &Error{Type: ErrorTypeNotFound, Code: code, Message: message}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *Error {
	return &Error{Type: ErrorTypeInternal, Code: code, Message: message, Cause: cause}
}

// IsType checks whether err is an *Error of the given type.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == errType
	}

	return false
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// Logger is the subset of the logging interface the handler needs.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// Handler logs errors according to their type.
type Handler struct {
	logger Logger
}

// NewHandler creates a new error handler.
func NewHandler(logger Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle logs err. Validation and not-found errors are warnings, everything
// else is an error.
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var e *Error
	if !errors.As(err, &e) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	switch e.Type {
	case ErrorTypeValidation, ErrorTypeNotFound:
		h.logger.Warn(ctx, err, "Request error",
			"type", e.Type,
			"code", e.Code)
	default:
		h.logger.Error(ctx, err, "Error occurred",
			"type", e.Type,
			"code", e.Code,
			"file", e.FilePath)
	}
}
