package errors

import (
	"errors"
)

// Wrap wraps an error with additional context. An *Error cause keeps its
// location and context.
func Wrap(err error, errType ErrorType, code, message string) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return &Error{
			Type:     errType,
			Code:     code,
			Message:  message,
			Cause:    e,
			Context:  e.Context,
			FilePath: e.FilePath,
			Line:     e.Line,
			Column:   e.Column,
		}
	}

	return &Error{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapConfig wraps an error as a configuration error.
func WrapConfig(err error, message string) *Error {
	return Wrap(err, ErrorTypeConfig, ErrCodeConfigLoad, message)
}

// WrapRender wraps an error as a render error.
func WrapRender(err error, message string) *Error {
	return Wrap(err, ErrorTypeRender, ErrCodeRenderFailed, message)
}

// WrapIO wraps an error as an I/O error.
func WrapIO(err error, code, message string) *Error {
	return Wrap(err, ErrorTypeIO, code, message)
}

// Join combines errors, ignoring nils.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
