package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is returned for malformed or missing input.
	ErrValidation = errors.New("validation error")
	// ErrPasswordMismatch is returned when confirm_password differs from password.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrDuplicateEmail is returned when an account with the email already exists.
	ErrDuplicateEmail = errors.New("a user with that email already exists")
	// ErrInvalidCredentials is returned for any failed password login.
	ErrInvalidCredentials = errors.New("invalid login credentials")
	// ErrInvalidToken is returned for any Google ID token failure.
	ErrInvalidToken = errors.New("invalid google id token")
	// ErrUserNotFound is returned by Google login when no account exists.
	ErrUserNotFound = errors.New("user with this google account does not exist, please sign up first")
	// ErrInvalidOrExpired is returned when an OTP does not match a live code.
	ErrInvalidOrExpired = errors.New("invalid or expired verification code")
	// ErrServiceUnavailable is returned when the mail transport is not configured.
	ErrServiceUnavailable = errors.New("email service not configured")
	// ErrNotificationFailed is returned when the mail transport rejected a send.
	ErrNotificationFailed = errors.New("failed to send verification code")
	// ErrUnauthenticated is returned when no authenticated user is resolved.
	ErrUnauthenticated = errors.New("authentication credentials were not provided")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid or revoked.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors collapse
// to a generic 500 so transport details never reach the client.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrPasswordMismatch):
		return NewHTTPError(http.StatusBadRequest, ErrPasswordMismatch.Error(), "PASSWORD_MISMATCH")
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrDuplicateEmail):
		return NewHTTPError(http.StatusBadRequest, ErrDuplicateEmail.Error(), "DUPLICATE_EMAIL")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidToken.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrInvalidOrExpired):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidOrExpired.Error(), "INVALID_OR_EXPIRED")
	case errors.Is(err, ErrServiceUnavailable):
		return NewHTTPError(http.StatusInternalServerError, ErrServiceUnavailable.Error(), "SERVICE_UNAVAILABLE")
	case errors.Is(err, ErrNotificationFailed):
		return NewHTTPError(http.StatusInternalServerError, ErrNotificationFailed.Error(), "NOTIFICATION_FAILED")
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthenticated.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidRefreshToken.Error(), "INVALID_REFRESH_TOKEN")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
