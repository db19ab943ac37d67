package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// TraceUnreadable indicates the trace source could not be read
	TraceUnreadable ErrorCode = "TRACE_UNREADABLE"
	// FolderUnreadable indicates the scan folder could not be listed
	FolderUnreadable ErrorCode = "FOLDER_UNREADABLE"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// StoreUnavailable indicates the scan cache database is unusable
	StoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	// FormatInvalid indicates an unsupported output format was requested
	FormatInvalid ErrorCode = "FORMAT_INVALID"
	// ExportFailed indicates the report bundle could not be written
	ExportFailed ErrorCode = "EXPORT_FAILED"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// LensError represents an apexlens error with code and message
type LensError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new LensError
func New(code ErrorCode, message string, cause error) *LensError {
	return &LensError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *LensError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *LensError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *LensError) WithDetails(details interface{}) *LensError {
	e.Details = details
	return e
}
