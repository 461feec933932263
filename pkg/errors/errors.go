package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeFileNotFound       ErrorType = "file_not_found"
	ErrorTypeInvalidArgument    ErrorType = "invalid_argument"
	ErrorTypeInvalidRangeSyntax ErrorType = "invalid_range_syntax"
	ErrorTypeWrongPassword      ErrorType = "wrong_password"
	ErrorTypeWrite              ErrorType = "write_error"
	ErrorTypeCodec              ErrorType = "codec_error"

	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeInternal     ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewFileNotFoundError reports an input path that does not exist.
func NewFileNotFoundError(path string) *AppError {
	return &AppError{
		Type:       ErrorTypeFileNotFound,
		Message:    "file does not exist",
		Details:    path,
		StatusCode: http.StatusNotFound,
	}
}

// NewInvalidArgumentError reports a malformed numeric or enum parameter.
func NewInvalidArgumentError(message string, details ...string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidArgument,
		Message:    message,
		Details:    firstDetail(details),
		StatusCode: http.StatusBadRequest,
	}
}

// NewInvalidRangeError reports a range expression that cannot be parsed.
func NewInvalidRangeError(expr string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidRangeSyntax,
		Message:    "invalid page range",
		Details:    expr,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewWrongPasswordError reports a password that does not unlock the document.
func NewWrongPasswordError(path string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeWrongPassword,
		Message:    "wrong password or decryption failed",
		Details:    path,
		StatusCode: http.StatusForbidden,
		Cause:      cause,
	}
}

// NewWriteError reports a destination that cannot be created or written.
func NewWriteError(path string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeWrite,
		Message:    "failed to write output",
		Details:    path,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewCodecError reports a document or image the codec rejected as corrupt or unsupported.
func NewCodecError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeCodec,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		Details:    firstDetail(details),
		StatusCode: http.StatusBadRequest,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// IsType checks if the error, or any error it wraps, is of a specific type
func IsType(err error, errorType ErrorType) bool {
	return KindOf(err) == errorType
}

// KindOf returns the type of the first AppError in err's chain, or "" if there is none.
func KindOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// GetStatusCode returns the HTTP status code for an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// StatusForType returns the HTTP status used for errors of the given type.
func StatusForType(t ErrorType) int {
	switch t {
	case "":
		return http.StatusOK
	case ErrorTypeFileNotFound, ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeInvalidArgument, ErrorTypeInvalidRangeSyntax, ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeWrongPassword:
		return http.StatusForbidden
	case ErrorTypeCodec:
		return http.StatusUnprocessableEntity
	case ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func firstDetail(details []string) string {
	if len(details) > 0 {
		return details[0]
	}
	return ""
}
