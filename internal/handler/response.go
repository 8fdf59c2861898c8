package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "eventauth/internal/errors"
	"eventauth/internal/logging"
	"eventauth/internal/model"
	"eventauth/internal/service"
)

const dateLayout = "2006-01-02"

// UserResponse is the user object returned by every flow that signs a user in.
type UserResponse struct {
	Email                  string  `json:"email"`
	FirstName              string  `json:"first_name"`
	LastName               string  `json:"last_name"`
	ProfilePicture         *string `json:"profile_picture"`
	Role                   string  `json:"role"`
	PhoneNumber            *string `json:"phone_number"`
	Birthday               *string `json:"birthday"`
	Gender                 *string `json:"gender"`
	CompanyName            *string `json:"company_name"`
	CompanyWebsite         *string `json:"company_website"`
	NeedsProfileCompletion bool    `json:"needs_profile_completion"`
}

// TokensResponse carries the credential pair plus a snapshot of the role and
// contact fields. The tokens themselves only identify the user.
type TokensResponse struct {
	Access         string  `json:"access"`
	Refresh        string  `json:"refresh"`
	Role           string  `json:"role"`
	PhoneNumber    *string `json:"phone_number"`
	Birthday       *string `json:"birthday"`
	Gender         *string `json:"gender"`
	CompanyName    *string `json:"company_name"`
	CompanyWebsite *string `json:"company_website"`
}

// AuthResponse is returned by register, login and the Google flows.
type AuthResponse struct {
	Message                string          `json:"message"`
	User                   UserResponse    `json:"user"`
	NeedsProfileCompletion bool            `json:"needsProfileCompletion"`
	Tokens                 *TokensResponse `json:"tokens,omitempty"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

func newUserResponse(u *model.User, needsProfile bool) UserResponse {
	return UserResponse{
		Email:                  u.Email,
		FirstName:              u.FirstName,
		LastName:               u.LastName,
		ProfilePicture:         u.ProfilePicture,
		Role:                   u.Role,
		PhoneNumber:            u.PhoneNumber,
		Birthday:               formatDate(u.Birthday),
		Gender:                 u.Gender,
		CompanyName:            u.CompanyName,
		CompanyWebsite:         u.CompanyWebsite,
		NeedsProfileCompletion: needsProfile,
	}
}

func newAuthResponse(message string, result *service.AuthResult) AuthResponse {
	u := result.User
	resp := AuthResponse{
		Message:                message,
		User:                   newUserResponse(u, result.NeedsProfileCompletion),
		NeedsProfileCompletion: result.NeedsProfileCompletion,
	}
	if result.Tokens != nil {
		resp.Tokens = &TokensResponse{
			Access:         result.Tokens.AccessToken,
			Refresh:        result.Tokens.RefreshToken,
			Role:           u.Role,
			PhoneNumber:    u.PhoneNumber,
			Birthday:       formatDate(u.Birthday),
			Gender:         u.Gender,
			CompanyName:    u.CompanyName,
			CompanyWebsite: u.CompanyWebsite,
		}
	}
	return resp
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// parseDate parses an optional YYYY-MM-DD value as UTC midnight, matching
// the UTC location the database connection is pinned to.
func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, *s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: birthday must be YYYY-MM-DD", apperrors.ErrValidation)
	}
	return &t, nil
}

// bindAndValidate decodes the JSON body into req and runs struct validation.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: "invalid request body",
			Code:  "VALIDATION_ERROR",
		})
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}
	return nil
}

// respondError translates err into an HTTP error. Internal failures are
// logged with their cause and returned generically.
func respondError(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		ctx := c.Request().Context()
		logging.FromContext(ctx).ErrorContext(ctx, "request failed",
			"path", c.Path(),
			"code", httpErr.Code,
			"err", err,
		)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
