package errors

import stderrors "errors"

// Domain is the error domain for empiregen errors.
const Domain = "github.com/louisbranch/empiregen"

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs/telemetry)
	Metadata map[string]string // Additional context for templating
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// ErrorMetadata returns the error metadata.
func (e *Error) ErrorMetadata() map[string]string {
	return e.Metadata
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithMetadata creates a domain error with metadata for i18n templating.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithMetadata creates a domain error with both metadata and a cause.
func WrapWithMetadata(code Code, message string, metadata map[string]string, cause error) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
		Cause:    cause,
	}
}

// Coded is implemented by typed errors outside this package that carry a code.
type Coded interface {
	error
	ErrorCode() Code
}

// ErrorCode returns the error code.
func (e *Error) ErrorCode() Code {
	return e.Code
}

// CodeOf returns the code of the first coded error in err's chain.
func CodeOf(err error) Code {
	var coded Coded
	if stderrors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return CodeUnknown
}

// MetadataOf returns the metadata of the first coded error in err's chain
// that exposes any.
func MetadataOf(err error) map[string]string {
	var withMetadata interface {
		ErrorMetadata() map[string]string
	}
	if stderrors.As(err, &withMetadata) {
		return withMetadata.ErrorMetadata()
	}
	return nil
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
