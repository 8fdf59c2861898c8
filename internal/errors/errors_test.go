package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{ErrPasswordMismatch, http.StatusBadRequest, "PASSWORD_MISMATCH"},
		{fmt.Errorf("%w: email is required", ErrValidation), http.StatusBadRequest, "VALIDATION_ERROR"},
		{fmt.Errorf("create user: %w", ErrDuplicateEmail), http.StatusBadRequest, "DUPLICATE_EMAIL"},
		{ErrInvalidCredentials, http.StatusBadRequest, "INVALID_CREDENTIALS"},
		{ErrInvalidToken, http.StatusBadRequest, "INVALID_TOKEN"},
		{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{ErrInvalidOrExpired, http.StatusBadRequest, "INVALID_OR_EXPIRED"},
		{ErrServiceUnavailable, http.StatusInternalServerError, "SERVICE_UNAVAILABLE"},
		{ErrNotificationFailed, http.StatusInternalServerError, "NOTIFICATION_FAILED"},
		{ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
		{ErrInvalidRefreshToken, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN"},
		{errors.New("dial tcp 10.0.0.1:3306: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.code, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_InternalIsGeneric(t *testing.T) {
	httpErr := MapErrorToHTTP(errors.New("secret dsn user:pass@tcp"))
	assert.Equal(t, "internal server error", httpErr.ToErrorResponse().Error)
}
