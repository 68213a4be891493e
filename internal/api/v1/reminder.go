package v1

import (
	"context"
	"net/http"

	"github.com/feesync/feesync/internal/api/dto"
	"github.com/feesync/feesync/internal/logger"
	"github.com/feesync/feesync/internal/service"
	"github.com/gin-gonic/gin"
)

// ReminderHandler serves the /sms routes
type ReminderHandler struct {
	service service.ReminderService
	logger  *logger.Logger
}

func NewReminderHandler(service service.ReminderService, logger *logger.Logger) *ReminderHandler {
	return &ReminderHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Unpaid students
// @Description Students with an email and no payment in the month
// @Tags Reminders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UnpaidStudentsRequest false "Month"
// @Success 200 {object} dto.UnpaidStudentsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /sms/unpaid-students [post]
func (h *ReminderHandler) ListUnpaidStudents(c *gin.Context) {
	var req dto.UnpaidStudentsRequest
	// an empty body means the current month
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	resp, err := h.service.ListUnpaidStudents(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Send a reminder
// @Tags Reminders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendReminderRequest true "Reminder"
// @Success 200 {object} dto.SendReminderResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /sms/send-reminder [post]
func (h *ReminderHandler) SendReminder(c *gin.Context) {
	var req dto.SendReminderRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.service.SendReminder(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Send reminders in bulk
// @Description Attempts every recipient and reports per recipient results
// @Tags Reminders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendBulkRemindersRequest false "Recipients"
// @Success 200 {object} dto.SendBulkRemindersResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /sms/send-bulk-reminders [post]
func (h *ReminderHandler) SendBulkReminders(c *gin.Context) {
	var req dto.SendBulkRemindersRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	// the batch keeps going if the client disconnects
	ctx := context.WithoutCancel(c.Request.Context())
	resp, err := h.service.SendBulkReminders(ctx, &req)
	if err != nil {
		c.Error(err)
		return
	}

	h.logger.Infow("bulk reminders sent", "total", resp.Total, "failed", resp.Failed)
	c.JSON(http.StatusOK, resp)
}
