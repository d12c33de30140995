package errors

import (
	"fmt"

	"gokinetics/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeDegenerateFit    = "DEGENERATE_FIT"
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeDatabaseError    = "DATABASE_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeInternalError    = "INTERNAL_ERROR"
)

// Common error constructors. Constructors that have a domain sentinel carry
// it as the cause so errors.Is checks work across the app boundary.
func ConfigInvalid(message string) *AppError {
	return &AppError{
		Code:    CodeConfigInvalid,
		Message: message,
		Cause:   core.ErrInvalidConfig,
	}
}

func DegenerateFit(label string, cause error) *AppError {
	return &AppError{
		Code:    CodeDegenerateFit,
		Message: fmt.Sprintf("degenerate fit for run %q", label),
		Cause:   cause,
	}
}

func InsufficientData(message string) *AppError {
	return &AppError{
		Code:    CodeInsufficientData,
		Message: message,
		Cause:   core.ErrInsufficientArrheniusData,
	}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}
