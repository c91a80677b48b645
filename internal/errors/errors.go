package errors

import (
	stderrors "errors"
	"fmt"
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
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
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

// WithCode attaches a code to err, keeping err as the cause
func WithCode(code string, err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the outermost AppError code, or "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes. Each pipeline stage reports under its own code.
const (
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeUnsupportedSource = "UNSUPPORTED_SOURCE"
	CodeImportError       = "IMPORT_ERROR"
	CodeDecodeError       = "DECODE_ERROR"
	CodeGroupError        = "GROUP_ERROR"
	CodeAggregateError    = "AGGREGATE_ERROR"
	CodeExportError       = "EXPORT_ERROR"
	CodeInternalError     = "INTERNAL_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ConfigInvalidf(format string, args ...interface{}) *AppError {
	return New(CodeConfigInvalid, fmt.Sprintf(format, args...))
}

func UnsupportedSource(cause error) *AppError {
	return &AppError{Code: CodeUnsupportedSource, Message: "import", Cause: cause}
}

func ImportError(message string, cause error) *AppError {
	return &AppError{Code: CodeImportError, Message: "import: " + message, Cause: cause}
}

func DecodeError(row int, cause error) *AppError {
	return &AppError{Code: CodeDecodeError, Message: fmt.Sprintf("decode row %d", row), Cause: cause}
}

func GroupError(signature []string, cause error) *AppError {
	return &AppError{Code: CodeGroupError, Message: fmt.Sprintf("group %v", signature), Cause: cause}
}

func AggregateError(column string, cause error) *AppError {
	return &AppError{Code: CodeAggregateError, Message: fmt.Sprintf("aggregate column %q", column), Cause: cause}
}

func ExportError(path string, cause error) *AppError {
	return &AppError{Code: CodeExportError, Message: fmt.Sprintf("export %s", path), Cause: cause}
}
