package router

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventauth/internal/auth"
	"eventauth/internal/config"
	"eventauth/internal/handler"
)

func TestJWTMiddleware(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	access, err := jwtService.GenerateAccessToken(42)
	require.NoError(t, err)
	foreign, err := auth.NewJWTService("other-secret").GenerateAccessToken(42)
	require.NoError(t, err)

	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		claims := c.Get("user").(*jwt.Token).Claims.(*auth.Claims)
		return c.JSON(http.StatusOK, map[string]uint{"user_id": claims.UserID})
	}, JWTMiddleware(jwtService.Secret()))

	tests := []struct {
		name         string
		header       string
		expectedCode int
	}{
		{name: "valid access token", header: "Bearer " + access, expectedCode: http.StatusOK},
		{name: "missing header", header: "", expectedCode: http.StatusUnauthorized},
		{name: "wrong signing key", header: "Bearer " + foreign, expectedCode: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer abc.def.ghi", expectedCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			if tt.expectedCode == http.StatusOK {
				assert.JSONEq(t, `{"user_id":42}`, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), "UNAUTHENTICATED")
			}
		})
	}
}

func TestRegister_CompleteProfileUsesServiceKey(t *testing.T) {
	jwtService := auth.NewJWTService("service-secret")
	access, err := jwtService.GenerateAccessToken(7)
	require.NoError(t, err)
	foreign, err := auth.NewJWTService("config-secret").GenerateAccessToken(7)
	require.NoError(t, err)

	e := echo.New()
	cfg := &config.Config{JWTSecret: "config-secret"}
	Register(e, cfg, slog.Default(), jwtService, Handlers{
		Auth:    handler.NewAuthHandler(nil, nil),
		Google:  handler.NewGoogleHandler(nil),
		OTP:     handler.NewOTPHandler(nil),
		Profile: handler.NewProfileHandler(nil),
	})

	tests := []struct {
		name         string
		token        string
		expectedCode int
		errorCode    string
	}{
		// Validation fails after the middleware, before any service call.
		{name: "signed by jwt service", token: access, expectedCode: http.StatusBadRequest, errorCode: "VALIDATION_ERROR"},
		{name: "signed with another key", token: foreign, expectedCode: http.StatusUnauthorized, errorCode: "UNAUTHENTICATED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/complete-profile", strings.NewReader(`{"company_website":"not a url"}`))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.errorCode)
		})
	}
}

func TestOTPRateLimiter(t *testing.T) {
	e := echo.New()
	e.POST("/otp-send", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, otpRateLimiter(0.001))

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/otp-send", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestOTPRateLimiter_Disabled(t *testing.T) {
	e := echo.New()
	e.POST("/otp-send", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, otpRateLimiter(0))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/otp-send", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestCustomValidator(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
	}
	v := NewValidator()
	assert.NoError(t, v.Validate(&payload{Email: "a@x.com"}))
	assert.Error(t, v.Validate(&payload{Email: "nope"}))
}
