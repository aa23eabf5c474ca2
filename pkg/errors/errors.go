package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicateCredential = errors.New("credential already in use")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrInvalidAPIKey       = errors.New("invalid api key")
	ErrKeyLimitExceeded    = errors.New("api key limit exceeded")
	ErrForbiddenOrigin     = errors.New("forbidden origin")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInternal            = errors.New("internal error")
	ErrServiceUnavail      = errors.New("service unavailable")
)

// AppError represents a structured application error with HTTP status mapping.
// Code and Message are safe to return to clients; the wrapped Err is not and
// stays server-side.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// DuplicateCredential creates a 400 error for an already-registered
// credential such as an email address.
func DuplicateCredential(message string) *AppError {
	return &AppError{
		Code:    "DUPLICATE_CREDENTIAL",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrDuplicateCredential,
	}
}

// InvalidCredentials creates a 401 error for a failed login. The message is
// the same for an unknown email and a wrong password so account existence
// cannot be probed.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:    "INVALID_CREDENTIALS",
		Message: "invalid email or password",
		Status:  http.StatusUnauthorized,
		Err:     ErrInvalidCredentials,
	}
}

// InvalidToken creates a 401 error for a missing, expired, revoked, or
// unknown refresh token.
func InvalidToken() *AppError {
	return &AppError{
		Code:    "INVALID_TOKEN",
		Message: "invalid or expired refresh token",
		Status:  http.StatusUnauthorized,
		Err:     ErrInvalidToken,
	}
}

// InvalidAPIKey creates a 401 error for an unknown API key.
func InvalidAPIKey() *AppError {
	return &AppError{
		Code:    "INVALID_API_KEY",
		Message: "invalid API key",
		Status:  http.StatusUnauthorized,
		Err:     ErrInvalidAPIKey,
	}
}

// KeyLimitExceeded creates a 400 error when a user already owns the maximum
// number of API keys.
func KeyLimitExceeded(max int) *AppError {
	return &AppError{
		Code:    "KEY_LIMIT_EXCEEDED",
		Message: fmt.Sprintf("maximum number of API keys reached (%d)", max),
		Status:  http.StatusBadRequest,
		Err:     ErrKeyLimitExceeded,
	}
}

// ForbiddenOrigin creates a 403 error for a state-changing request whose
// Origin or Referer header failed validation.
func ForbiddenOrigin() *AppError {
	return &AppError{
		Code:    "FORBIDDEN_ORIGIN",
		Message: "request origin validation failed",
		Status:  http.StatusForbidden,
		Err:     ErrForbiddenOrigin,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateCredential),
		errors.Is(err, ErrKeyLimitExceeded),
		errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidAPIKey),
		errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrForbiddenOrigin):
		return http.StatusForbidden
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
