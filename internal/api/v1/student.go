package v1

import (
	"net/http"

	"github.com/feesync/feesync/internal/api/dto"
	"github.com/feesync/feesync/internal/logger"
	"github.com/feesync/feesync/internal/service"
	"github.com/gin-gonic/gin"
)

// StudentHandler serves the student portal
type StudentHandler struct {
	service service.StudentService
	logger  *logger.Logger
}

func NewStudentHandler(service service.StudentService, logger *logger.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Student login
// @Tags Student
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} ierr.ErrorResponse
// @Router /student/login [post]
func (h *StudentHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Send student one-time code
// @Tags Student
// @Accept json
// @Produce json
// @Param request body dto.SendOTPRequest true "Send OTP request"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /student/send-otp [post]
func (h *StudentHandler) SendOTP(c *gin.Context) {
	var req dto.SendOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.service.SendOTP(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Verify student one-time code
// @Tags Student
// @Accept json
// @Produce json
// @Param request body dto.VerifyOTPRequest true "Verify OTP request"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} ierr.ErrorResponse
// @Router /student/verify-otp [post]
func (h *StudentHandler) VerifyOTP(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.service.VerifyOTP(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Student forgot password
// @Tags Student
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Forgot password request"
// @Success 200 {object} dto.SuccessResponse
// @Router /student/forgot-password [post]
func (h *StudentHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.service.ForgotPassword(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Student reset password
// @Tags Student
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Reset password request"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /student/reset-password [post]
func (h *StudentHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.service.ResetPassword(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Set password
// @Description Set the password of the signed in student
// @Tags Student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SetPasswordRequest true "Set password request"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /student/set-password [post]
func (h *StudentHandler) SetPassword(c *gin.Context) {
	var req dto.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.service.SetPassword(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Student profile
// @Description Profile, invoices, payments and outstanding balance of the signed in student
// @Tags Student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StudentProfileResponse
// @Failure 401 {object} ierr.ErrorResponse
// @Router /student/me [get]
func (h *StudentHandler) Me(c *gin.Context) {
	resp, err := h.service.Me(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
