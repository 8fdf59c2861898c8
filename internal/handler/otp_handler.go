package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"eventauth/internal/service"
)

// OTPHandler handles email existence checks and one-time passcodes.
type OTPHandler struct {
	otp service.OTPService
}

// NewOTPHandler creates a new OTP handler.
func NewOTPHandler(otp service.OTPService) *OTPHandler {
	return &OTPHandler{otp: otp}
}

// EmailRequest carries a single email address.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPRequest carries the email and the code, sent as "otp" or "code".
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp"`
	Code  string `json:"code"`
}

// EmailExistsResponse reports whether an account uses the email.
type EmailExistsResponse struct {
	Exists bool `json:"exists"`
}

// EmailCheck godoc
// @Summary Check whether an email is registered
// @Tags otp
// @Accept json
// @Produce json
// @Param request body EmailRequest true "Email"
// @Success 200 {object} EmailExistsResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /auth/email-check [post]
func (h *OTPHandler) EmailCheck(c echo.Context) error {
	var req EmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	exists, err := h.otp.CheckEmailExists(c.Request().Context(), req.Email)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, EmailExistsResponse{Exists: exists})
}

// SendOTP godoc
// @Summary Email a one-time passcode
// @Tags otp
// @Accept json
// @Produce json
// @Param request body EmailRequest true "Email"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 429 {object} map[string]string
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/otp-send [post]
func (h *OTPHandler) SendOTP(c echo.Context) error {
	var req EmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.otp.SendOTP(c.Request().Context(), req.Email); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "OTP sent successfully"})
}

// VerifyOTP godoc
// @Summary Verify a one-time passcode
// @Tags otp
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Email and code"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /auth/otp-verify [post]
func (h *OTPHandler) VerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.otp.VerifyOTP(c.Request().Context(), req.Email, pickToken(req.OTP, req.Code)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "OTP verified successfully"})
}
