package domain

import "errors"

// Domain errors
var (
	ErrJobNotFound       = errors.New("job not found")
	ErrForeignDocument   = errors.New("page source was not opened by this codec")
	ErrPageOutOfRange    = errors.New("page index out of range")
	ErrDocumentClosed    = errors.New("document is closed")
	ErrPathOutsideRoot   = errors.New("path escapes the workspace")
	ErrSupabaseDisabled  = errors.New("supabase is not configured")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
