package handler

import (
	"encoding/json"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"eventauth/internal/auth"
	apperrors "eventauth/internal/errors"
	"eventauth/internal/service"
)

// ProfileHandler handles profile completion for signed-in users.
type ProfileHandler struct {
	resolver service.AccountResolver
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(resolver service.AccountResolver) *ProfileHandler {
	return &ProfileHandler{resolver: resolver}
}

// CompleteProfileRequest is a partial update; omitted fields are unchanged.
// A birthday sent as null or "" removes the stored one.
type CompleteProfileRequest struct {
	PhoneNumber    *string      `json:"phone_number" validate:"omitempty,max=20"`
	Birthday       optionalDate `json:"birthday" swaggertype:"string" example:"1990-01-31"`
	Gender         *string      `json:"gender" validate:"omitempty,max=10"`
	CompanyName    *string      `json:"company_name" validate:"omitempty,max=255"`
	CompanyWebsite *string      `json:"company_website" validate:"omitempty,url"`
}

// optionalDate tells an omitted key apart from an explicit null.
type optionalDate struct {
	Present bool
	Value   *string
}

func (d *optionalDate) UnmarshalJSON(b []byte) error {
	d.Present = true
	if string(b) == "null" {
		d.Value = nil
		return nil
	}
	return json.Unmarshal(b, &d.Value)
}

// CompleteProfileResponse returns the updated user.
type CompleteProfileResponse struct {
	Message                string       `json:"message"`
	User                   UserResponse `json:"user"`
	NeedsProfileCompletion bool         `json:"needsProfileCompletion"`
}

// CompleteProfile godoc
// @Summary Fill in contact fields
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CompleteProfileRequest true "Contact fields"
// @Success 200 {object} CompleteProfileResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/complete-profile [post]
func (h *ProfileHandler) CompleteProfile(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return respondError(c, apperrors.ErrUnauthenticated)
	}

	var req CompleteProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	birthday, err := parseDate(req.Birthday.Value)
	if err != nil {
		return respondError(c, err)
	}

	user, err := h.resolver.CompleteProfile(c.Request().Context(), userID, service.ProfileUpdate{
		PhoneNumber:    req.PhoneNumber,
		Birthday:       birthday,
		ClearBirthday:  req.Birthday.Present && birthday == nil,
		Gender:         req.Gender,
		CompanyName:    req.CompanyName,
		CompanyWebsite: req.CompanyWebsite,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, CompleteProfileResponse{
		Message: "profile updated successfully",
		User:    newUserResponse(user, false),
	})
}

// currentUserID reads the access token placed in the context by the JWT
// middleware. Refresh tokens are not accepted here.
func currentUserID(c echo.Context) (uint, bool) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok || token == nil {
		return 0, false
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok || claims.TokenType != auth.TokenTypeAccess || claims.UserID == 0 {
		return 0, false
	}
	return claims.UserID, true
}
