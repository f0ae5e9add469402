package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError provides a structured error that can be rendered to API consumers.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// Common errors exposed to the rest of the application.
var (
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	// ErrUnknownConnection is returned when a raw query names a connection that
	// has no live executor in the registry.
	ErrUnknownConnection = &AppError{
		Code:       "UNKNOWN_CONNECTION",
		Message:    "Not a valid connection",
		StatusCode: http.StatusUnauthorized,
	}

	// ErrStaleConnection is returned by the studio query path when the named
	// connection exists but has no live executor, e.g. after a restart.
	ErrStaleConnection = &AppError{
		Code:       "STALE_CONNECTION",
		Message:    "Not a valid live connection. Refresh connection, then retry.",
		StatusCode: http.StatusForbidden,
	}

	ErrUnsupportedConnectionType = &AppError{
		Code:       "UNSUPPORTED_CONNECTION_TYPE",
		Message:    "this connection type is not supported currently",
		StatusCode: http.StatusBadRequest,
	}

	// ErrTerminating signals a client-requested shutdown.
	ErrTerminating = &AppError{
		Code:       "SERVER_TERMINATING",
		Message:    "Server is shutting down",
		StatusCode: http.StatusServiceUnavailable,
	}
)

// New builds a new application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest wraps validation errors with a helpful message.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:       ErrBadRequest.Code,
		Message:    message,
		StatusCode: ErrBadRequest.StatusCode,
	}
}

// NewUnprocessable reports a statement that could not be parsed.
func NewUnprocessable(message string) *AppError {
	return &AppError{
		Code:       "UNPROCESSABLE",
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewExecutionFailure reports a statement that failed while running on the
// data source. The underlying error message is surfaced to the client, which
// is what the studio UI renders next to the query editor.
func NewExecutionFailure(err error) *AppError {
	return &AppError{
		Code:       "QUERY_EXECUTION_FAILED",
		Message:    fmt.Sprintf("%v", err),
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}
