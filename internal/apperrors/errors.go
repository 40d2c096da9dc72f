// Package apperrors holds the error taxonomy shared by the resolution pipeline and its
// transports. Callers only ever see a stable Code and a human Message.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrUpstream           = errors.New("upstream dependency failed")
	ErrCatalogUnavailable = errors.New("catalog has never been loaded")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Stable error codes returned to callers.
const (
	CodeValidation         = "validation_error"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeRateLimited        = "rate_limited"
	CodeUpstream           = "upstream_error"
	CodeCatalogUnavailable = "catalog_unavailable"
	CodeInternal           = "internal_error"
)

// Error is a classified failure. Cause is kept for logs and never rendered.
type Error struct {
	Code    string
	Message string
	Status  int
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Validation reports missing or malformed input.
func Validation(format string, args ...any) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: fmt.Sprintf(format, args...),
		Status:  http.StatusBadRequest,
		Cause:   ErrValidation,
	}
}

// CatalogUnavailable reports that no snapshot has ever been loaded.
func CatalogUnavailable(cause error) *Error {
	if cause == nil {
		cause = ErrCatalogUnavailable
	} else if !errors.Is(cause, ErrCatalogUnavailable) {
		cause = fmt.Errorf("%w: %w", ErrCatalogUnavailable, cause)
	}
	return &Error{
		Code:    CodeCatalogUnavailable,
		Message: "product catalog is not available yet, please retry shortly",
		Status:  http.StatusServiceUnavailable,
		Cause:   cause,
	}
}

// Upstream reports a dependency failure that had no local fallback.
func Upstream(message string, cause error) *Error {
	return &Error{
		Code:    CodeUpstream,
		Message: message,
		Status:  http.StatusBadGateway,
		Cause:   fmt.Errorf("%w: %w", ErrUpstream, cause),
	}
}

// From classifies any error. Unknown errors become internal_error.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, ErrValidation):
		return &Error{Code: CodeValidation, Message: "invalid request", Status: http.StatusBadRequest, Cause: err}
	case errors.Is(err, ErrCatalogUnavailable):
		return CatalogUnavailable(err)
	case errors.Is(err, ErrUnauthorized):
		return &Error{Code: CodeUnauthorized, Message: "authentication required", Status: http.StatusUnauthorized, Cause: err}
	case errors.Is(err, ErrNotFound):
		return &Error{Code: CodeNotFound, Message: "resource not found", Status: http.StatusNotFound, Cause: err}
	case errors.Is(err, ErrUpstream):
		return &Error{Code: CodeUpstream, Message: "an upstream dependency failed", Status: http.StatusBadGateway, Cause: err}
	default:
		return &Error{Code: CodeInternal, Message: "internal error", Status: http.StatusInternalServerError, Cause: err}
	}
}
