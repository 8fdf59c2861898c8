package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "eventauth/internal/errors"
	"eventauth/internal/service"
)

// GoogleHandler handles Google sign-in endpoints.
type GoogleHandler struct {
	resolver service.AccountResolver
}

// NewGoogleHandler creates a new Google handler.
func NewGoogleHandler(resolver service.AccountResolver) *GoogleHandler {
	return &GoogleHandler{resolver: resolver}
}

// GoogleRegisterRequest carries a Google ID token and the requested role.
// The token may be sent as either "googleIdToken" or "token".
type GoogleRegisterRequest struct {
	GoogleIDToken string `json:"googleIdToken"`
	Token         string `json:"token"`
	Role          string `json:"role" validate:"omitempty,oneof=guest client"`
}

// GoogleLoginRequest carries a Google ID token.
type GoogleLoginRequest struct {
	GoogleIDToken string `json:"googleIdToken"`
	Token         string `json:"token"`
}

func pickToken(primary, alias string) string {
	if primary != "" {
		return primary
	}
	return alias
}

// Register godoc
// @Summary Register or sign in with a Google ID token
// @Description Creates the account on first sight of the email (201). An existing account is updated and signed in (200).
// @Tags google
// @Accept json
// @Produce json
// @Param request body GoogleRegisterRequest true "Google ID token and role"
// @Success 200 {object} AuthResponse
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/google/register [post]
func (h *GoogleHandler) Register(c echo.Context) error {
	var req GoogleRegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.resolver.GoogleRegister(c.Request().Context(), pickToken(req.GoogleIDToken, req.Token), req.Role)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			return echo.NewHTTPError(http.StatusConflict, apperrors.ErrorResponse{
				Error: err.Error(),
				Code:  "DUPLICATE_EMAIL",
			})
		}
		return respondError(c, err)
	}

	if result.Created {
		return c.JSON(http.StatusCreated, newAuthResponse("user registered successfully", result))
	}
	return c.JSON(http.StatusOK, newAuthResponse("login successful", result))
}

// Login godoc
// @Summary Sign in with a Google ID token
// @Tags google
// @Accept json
// @Produce json
// @Param request body GoogleLoginRequest true "Google ID token"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/google/login [post]
func (h *GoogleHandler) Login(c echo.Context) error {
	var req GoogleLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.resolver.GoogleLogin(c.Request().Context(), pickToken(req.GoogleIDToken, req.Token))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, newAuthResponse("login successful", result))
}
